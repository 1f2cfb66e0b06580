package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/observability"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// UnknownAddress is shown when the geocoder has no address for a position.
const UnknownAddress = "unknown address"

// ReverseGeocoder resolves coordinates to an address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// GeocodeCache memoizes geocoder answers.
type GeocodeCache interface {
	Get(ctx context.Context, lat, lon float64) (string, bool, error)
	Set(ctx context.Context, lat, lon float64, address string) error
}

// GeoService fronts the geocoder with a cache. Cache failures degrade to a
// direct upstream call.
type GeoService struct {
	geocoder ReverseGeocoder
	cache    GeocodeCache
	logger   *zap.Logger
}

// NewGeoService constructs the service; cache may be nil.
func NewGeoService(geocoder ReverseGeocoder, cache GeocodeCache, logger *zap.Logger) *GeoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoService{geocoder: geocoder, cache: cache, logger: logger}
}

// ReverseGeocode returns the address for (lat, lon).
func (s *GeoService) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return "", err
	}

	if s.cache != nil {
		address, ok, err := s.cache.Get(ctx, lat, lon)
		switch {
		case err != nil:
			s.logger.Warn("geocode cache unavailable", zap.Error(err))
		case ok:
			observability.GeocodeCacheTotal.WithLabelValues("hit").Inc()
			return address, nil
		default:
			observability.GeocodeCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	address, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("reverse geocode failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return "", err
	}
	if address == "" {
		return UnknownAddress, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, lat, lon, address); err != nil {
			s.logger.Warn("geocode cache write failed", zap.Error(err))
		}
	}
	return address, nil
}

func validateCoordinates(lat, lon float64) error {
	details := map[string]any{}
	if !inRange(lat, 90) {
		details["lat"] = "must be between -90 and 90"
	}
	if !inRange(lon, 180) {
		details["lon"] = "must be between -180 and 180"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid coordinates", details)
	}
	return nil
}

// inRange is false for NaN and infinities as well as out-of-range values.
func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}
