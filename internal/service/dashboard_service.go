package service

import (
	"context"
	"time"

	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TodayCheckInCount   int
	OnlineEmployeeCount int
}

// DashboardService aggregates today's activity.
type DashboardService struct {
	records  repository.CheckInRepository
	registry *auth.SessionRegistry
	now      func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(records repository.CheckInRepository, registry *auth.SessionRegistry) *DashboardService {
	return &DashboardService{records: records, registry: registry, now: time.Now}
}

// Stats counts distinct employees who checked in since local midnight and
// employees currently holding a session.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	n, err := s.records.CountDistinctEmployeesSince(ctx, midnight)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &DashboardStats{
		TodayCheckInCount:   n,
		OnlineEmployeeCount: s.registry.CountActive(domain.RoleEmployee),
	}, nil
}
