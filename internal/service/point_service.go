package service

import (
	"context"
	"strings"

	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// PointService manages check-in points and their assignments.
type PointService struct {
	points repository.PointRepository
}

// PointInput describes a point to create or replace.
type PointInput struct {
	Title        string
	Address      string
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	EmployeeIDs  []int64
}

// NewPointService constructs the service.
func NewPointService(points repository.PointRepository) *PointService {
	return &PointService{points: points}
}

// Create stores a point with its assigned employees.
func (s *PointService) Create(ctx context.Context, input PointInput) (*domain.CheckInPoint, error) {
	point := input.toDomain()
	if err := s.points.Create(ctx, point); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.reload(ctx, point.ID)
}

// Update replaces every field of the point, including assignments.
func (s *PointService) Update(ctx context.Context, id int64, input PointInput) (*domain.CheckInPoint, error) {
	point := input.toDomain()
	point.ID = id
	if err := s.points.Update(ctx, point); err != nil {
		return nil, notFound(err, "check-in point", id)
	}
	return s.reload(ctx, id)
}

// List returns points, optionally filtered by title/address keyword.
func (s *PointService) List(ctx context.Context, filter repository.PointFilter) ([]domain.CheckInPoint, error) {
	points, err := s.points.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return points, nil
}

// ListForEmployee returns the points an employee may check in at.
func (s *PointService) ListForEmployee(ctx context.Context, employeeID int64) ([]domain.CheckInPoint, error) {
	points, err := s.points.ListForEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return points, nil
}

// Delete removes a point; its assignments go with it.
func (s *PointService) Delete(ctx context.Context, id int64) error {
	if err := s.points.Delete(ctx, id); err != nil {
		return notFound(err, "check-in point", id)
	}
	return nil
}

func (s *PointService) reload(ctx context.Context, id int64) (*domain.CheckInPoint, error) {
	point, err := s.points.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "check-in point", id)
	}
	return point, nil
}

func (in PointInput) toDomain() *domain.CheckInPoint {
	radius := in.RadiusMeters
	if radius <= 0 {
		radius = domain.DefaultPointRadiusMeters
	}
	return &domain.CheckInPoint{
		Title:        strings.TrimSpace(in.Title),
		Address:      strings.TrimSpace(in.Address),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		RadiusMeters: radius,
		EmployeeIDs:  in.EmployeeIDs,
	}
}
