package dto

import (
	"time"

	"github.com/fieldops/attendance-service/internal/domain"
)

// RecordResponse is the public view of a check-in record.
type RecordResponse struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employee_id"`
	PointID      int64     `json:"point_id"`
	PhotoKey     string    `json:"photo_key"`
	Latitude     float64   `json:"lat"`
	Longitude    float64   `json:"lon"`
	LocationName string    `json:"location_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// CheckInResponse is returned after a successful check-in.
type CheckInResponse struct {
	Record         *RecordResponse `json:"record"`
	DistanceMeters float64         `json:"distance_meters"`
	AllowedMeters  float64         `json:"allowed_meters"`
}

// GeoResponse carries a reverse-geocoded address.
type GeoResponse struct {
	Address string `json:"address"`
}

// DashboardStatsResponse is the admin landing page summary.
type DashboardStatsResponse struct {
	TodayCheckInCount   int `json:"today_checkin_count"`
	OnlineEmployeeCount int `json:"online_employee_count"`
}

// NewRecordResponse converts the domain model.
func NewRecordResponse(r *domain.CheckInRecord) *RecordResponse {
	return &RecordResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		PointID:      r.PointID,
		PhotoKey:     r.PhotoKey,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		LocationName: r.LocationName,
		CreatedAt:    r.CreatedAt,
	}
}

// NewRecordList converts a slice, never returning nil.
func NewRecordList(records []domain.CheckInRecord) []*RecordResponse {
	out := make([]*RecordResponse, 0, len(records))
	for i := range records {
		out = append(out, NewRecordResponse(&records[i]))
	}
	return out
}
