package domain

import "time"

// DefaultPointRadiusMeters applies when a point is created without a radius.
const DefaultPointRadiusMeters = 500

// CheckInPoint is a geo-fenced location employees may check in at.
type CheckInPoint struct {
	ID           int64
	Title        string
	Address      string
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	EmployeeIDs  []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
