package domain

import "time"

// CheckInRecord is an append-only fact that an employee checked in.
type CheckInRecord struct {
	ID           int64
	EmployeeID   int64
	PointID      int64
	PhotoKey     string
	Latitude     float64
	Longitude    float64
	LocationName string
	CreatedAt    time.Time
}
