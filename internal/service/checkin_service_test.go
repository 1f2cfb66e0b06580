package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/geo"
	"github.com/fieldops/attendance-service/internal/repository"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

type checkInFixture struct {
	points   *memPoints
	records  *memRecords
	photos   *memPhotos
	geocoder *stubGeocoder
	svc      *CheckInService
	point    *domain.CheckInPoint
}

func newCheckInFixture(t *testing.T) *checkInFixture {
	t.Helper()
	f := &checkInFixture{
		points:   newMemPoints(),
		records:  newMemRecords(),
		photos:   newMemPhotos(),
		geocoder: &stubGeocoder{address: "No. 1 People's Avenue"},
	}
	f.point = &domain.CheckInPoint{Title: "HQ", Latitude: 30, Longitude: 120, RadiusMeters: 500, EmployeeIDs: []int64{7}}
	require.NoError(t, f.points.Create(context.Background(), f.point))
	f.svc = NewCheckInService(CheckInDependencies{
		PointRepo:   f.points,
		CheckInRepo: f.records,
		Photos:      f.photos,
		Geo:         NewGeoService(f.geocoder, nil, nil),
		Evaluator:   geo.NewEvaluator(geo.DefaultToleranceMeters),
	})
	return f
}

// northOf returns the latitude d meters north of lat.
func northOf(lat, d float64) float64 {
	return lat + d/geo.EarthRadiusMeters*180/math.Pi
}

func (f *checkInFixture) input(lat float64) CheckInInput {
	return CheckInInput{
		EmployeeID:  7,
		PointID:     f.point.ID,
		Latitude:    lat,
		Longitude:   120,
		Photo:       strings.NewReader("jpeg-bytes"),
		PhotoSize:   10,
		ContentType: "image/jpeg",
	}
}

func TestCheckIn_AcceptedWithinTolerance(t *testing.T) {
	f := newCheckInFixture(t)

	res, err := f.svc.Submit(context.Background(), f.input(northOf(30, 540)))
	require.NoError(t, err)
	assert.True(t, res.Verdict.Accepted)
	assert.Equal(t, "No. 1 People's Avenue", res.Record.LocationName)
	assert.Equal(t, int64(7), res.Record.EmployeeID)

	body, ok := f.photos.objects[res.Record.PhotoKey]
	require.True(t, ok)
	assert.Equal(t, "jpeg-bytes", string(body))
	assert.Equal(t, "image/jpeg", f.photos.types[res.Record.PhotoKey])

	history, err := f.svc.History(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCheckIn_OutOfRangeCarriesDistance(t *testing.T) {
	f := newCheckInFixture(t)

	_, err := f.svc.Submit(context.Background(), f.input(northOf(30, 600)))
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	de := apperrors.ToDomainError(err)
	assert.InDelta(t, 600, de.Details["distance_meters"], 0.1)
	assert.Equal(t, 550.0, de.Details["allowed_meters"])

	assert.Empty(t, f.photos.objects)
	assert.Empty(t, f.records.records)
}

func TestCheckIn_Rejections(t *testing.T) {
	f := newCheckInFixture(t)
	ctx := context.Background()

	in := f.input(30)
	in.ContentType = "application/pdf"
	_, err := f.svc.Submit(ctx, in)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	in = f.input(30)
	in.EmployeeID = 8
	_, err = f.svc.Submit(ctx, in)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	in = f.input(30)
	in.PointID = 404
	_, err = f.svc.Submit(ctx, in)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	in = f.input(91)
	_, err = f.svc.Submit(ctx, in)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	assert.Empty(t, f.records.records)
}

func TestCheckIn_StorageFailureIsUpstream(t *testing.T) {
	f := newCheckInFixture(t)
	f.photos.err = errors.New("bucket offline")

	_, err := f.svc.Submit(context.Background(), f.input(30))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable))
	assert.Empty(t, f.records.records)
}

func TestCheckIn_GeocoderOutageDoesNotBlock(t *testing.T) {
	f := newCheckInFixture(t)
	f.geocoder.err = apperrors.NewUpstreamUnavailable("amap", errors.New("down"))

	res, err := f.svc.Submit(context.Background(), f.input(30))
	require.NoError(t, err)
	assert.Equal(t, UnknownAddress, res.Record.LocationName)
}

func TestCheckIn_RejectsNonFiniteCoordinates(t *testing.T) {
	f := newCheckInFixture(t)
	ctx := context.Background()

	for _, lat := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := f.svc.Submit(ctx, f.input(lat))
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "lat=%v", lat)
		assert.Equal(t, "invalid coordinates", apperrors.ToDomainError(err).Message)
		assert.Contains(t, apperrors.ToDomainError(err).Details, "lat")
	}

	in := f.input(30)
	in.Longitude = math.NaN()
	_, err := f.svc.Submit(ctx, in)
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Contains(t, apperrors.ToDomainError(err).Details, "lon")

	assert.Empty(t, f.records.records)
	assert.Zero(t, f.geocoder.calls)
}

func TestCheckIn_ListFilters(t *testing.T) {
	f := newCheckInFixture(t)
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, f.input(30))
	require.NoError(t, err)

	got, err := f.svc.List(ctx, repository.CheckInFilter{PointID: f.point.ID})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	got, err = f.svc.List(ctx, repository.CheckInFilter{EmployeeID: 99})
	require.NoError(t, err)
	assert.Empty(t, got)
}
