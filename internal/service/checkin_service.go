package service

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/events"
	"github.com/fieldops/attendance-service/internal/geo"
	"github.com/fieldops/attendance-service/internal/observability"
	"github.com/fieldops/attendance-service/internal/repository"
	"github.com/fieldops/attendance-service/internal/storage"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// PhotoStore persists uploaded check-in photos.
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// CheckInService validates and records employee check-ins.
type CheckInService struct {
	points     repository.PointRepository
	records    repository.CheckInRepository
	photos     PhotoStore
	geo        *GeoService
	evaluator  *geo.Evaluator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// CheckInDependencies bundles collaborators.
type CheckInDependencies struct {
	PointRepo   repository.PointRepository
	CheckInRepo repository.CheckInRepository
	Photos      PhotoStore
	Geo         *GeoService
	Evaluator   *geo.Evaluator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CheckInInput is one check-in submission.
type CheckInInput struct {
	EmployeeID  int64
	PointID     int64
	Latitude    float64
	Longitude   float64
	Photo       io.Reader
	PhotoSize   int64
	ContentType string
}

// CheckInResult pairs the stored record with the fence verdict.
type CheckInResult struct {
	Record  *domain.CheckInRecord
	Verdict geo.Verdict
}

// NewCheckInService constructs the service.
func NewCheckInService(deps CheckInDependencies) *CheckInService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	evaluator := deps.Evaluator
	if evaluator == nil {
		evaluator = geo.NewEvaluator(geo.DefaultToleranceMeters)
	}
	return &CheckInService{
		points:     deps.PointRepo,
		records:    deps.CheckInRepo,
		photos:     deps.Photos,
		geo:        deps.Geo,
		evaluator:  evaluator,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit checks assignment and distance, stores the photo and records the
// check-in. An out-of-range position is rejected with the measured distance.
func (s *CheckInService) Submit(ctx context.Context, input CheckInInput) (res *CheckInResult, err error) {
	defer func() {
		result := "accepted"
		if err != nil {
			result = strings.ToLower(apperrors.ToDomainError(err).Code)
		}
		observability.CheckInsTotal.WithLabelValues(result).Inc()
	}()

	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, apperrors.NewValidationError("only image uploads are accepted", map[string]any{"content_type": input.ContentType})
	}
	if err := validateCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}

	point, err := s.points.GetByID(ctx, input.PointID)
	if err != nil {
		return nil, notFound(err, "check-in point", input.PointID)
	}
	assigned, err := s.points.IsAssigned(ctx, point.ID, input.EmployeeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !assigned {
		return nil, apperrors.NewForbidden("not assigned to this check-in point")
	}

	verdict := s.evaluator.Evaluate(geo.Fence{
		Latitude:     point.Latitude,
		Longitude:    point.Longitude,
		RadiusMeters: float64(point.RadiusMeters),
	}, input.Latitude, input.Longitude)
	if !verdict.Accepted {
		return nil, apperrors.NewValidationError("outside the check-in range", map[string]any{
			"distance_meters": roundMeters(verdict.DistanceMeters),
			"allowed_meters":  verdict.AllowedMeters,
		})
	}

	key := storage.PhotoKey(input.EmployeeID, input.ContentType, s.now())
	if err := s.photos.Put(ctx, key, input.Photo, input.PhotoSize, input.ContentType); err != nil {
		return nil, apperrors.NewUpstreamUnavailable("object storage", err)
	}

	record := &domain.CheckInRecord{
		EmployeeID:   input.EmployeeID,
		PointID:      point.ID,
		PhotoKey:     key,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		LocationName: s.locationName(ctx, input.Latitude, input.Longitude),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.New(events.EventCheckInRecorded, employeeActor(input.EmployeeID),
		events.CheckInRecordedPayload{
			RecordID:       record.ID,
			EmployeeID:     record.EmployeeID,
			PointID:        record.PointID,
			DistanceMeters: verdict.DistanceMeters,
		}))
	return &CheckInResult{Record: record, Verdict: verdict}, nil
}

// History lists an employee's own records, newest first.
func (s *CheckInService) History(ctx context.Context, employeeID int64, limit, offset int) ([]domain.CheckInRecord, error) {
	return s.List(ctx, repository.CheckInFilter{EmployeeID: employeeID, Limit: limit, Offset: offset})
}

// List returns records for administrators.
func (s *CheckInService) List(ctx context.Context, filter repository.CheckInFilter) ([]domain.CheckInRecord, error) {
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// locationName is best effort: a geocoder outage must not block a check-in.
func (s *CheckInService) locationName(ctx context.Context, lat, lon float64) string {
	if s.geo == nil {
		return ""
	}
	address, err := s.geo.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("reverse geocode failed, storing placeholder", zap.Error(err))
		return UnknownAddress
	}
	return address
}

func roundMeters(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
