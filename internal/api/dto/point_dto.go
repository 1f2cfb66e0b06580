package dto

import (
	"time"

	"github.com/fieldops/attendance-service/internal/domain"
)

// PointRequest creates or fully replaces a check-in point.
type PointRequest struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Address     string   `json:"address" validate:"max=255"`
	Latitude    *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Radius      int      `json:"radius" validate:"omitempty,min=1,max=100000"`
	EmployeeIDs []int64  `json:"employee_ids" validate:"dive,gt=0"`
}

// PointResponse is the public view of a check-in point.
type PointResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Radius      int       `json:"radius"`
	EmployeeIDs []int64   `json:"employee_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPointResponse converts the domain model.
func NewPointResponse(p *domain.CheckInPoint) *PointResponse {
	ids := p.EmployeeIDs
	if ids == nil {
		ids = []int64{}
	}
	return &PointResponse{
		ID:          p.ID,
		Title:       p.Title,
		Address:     p.Address,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Radius:      p.RadiusMeters,
		EmployeeIDs: ids,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewPointList converts a slice, never returning nil.
func NewPointList(points []domain.CheckInPoint) []*PointResponse {
	out := make([]*PointResponse, 0, len(points))
	for i := range points {
		out = append(out, NewPointResponse(&points[i]))
	}
	return out
}
