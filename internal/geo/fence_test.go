package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// northOf returns the latitude d meters due north of lat along a meridian.
func northOf(lat, d float64) float64 {
	return lat + d/EarthRadiusMeters*180/math.Pi
}

func TestDistance_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(31.2304, 121.4737, 31.2304, 121.4737))
	assert.Equal(t, 0.0, Distance(-33.8688, 151.2093, -33.8688, 151.2093))
}

func TestDistance_IsSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{31.2304, 121.4737, 39.9042, 116.4074},
		{0, 0, 0, 179.9},
		{-33.8688, 151.2093, 51.5074, -0.1278},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1], p[2], p[3]), Distance(p[2], p[3], p[0], p[1]), 1e-6)
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of latitude on the sphere.
	assert.InDelta(t, EarthRadiusMeters*math.Pi/180, Distance(0, 0, 1, 0), 1e-6)
	// Shanghai to Beijing is roughly 1,067 km.
	assert.InDelta(t, 1067000, Distance(31.2304, 121.4737, 39.9042, 116.4074), 5000)
	assert.InDelta(t, 1000, Distance(30, 120, northOf(30, 1000), 120), 1e-6)
}

func TestEvaluator_ToleranceBoundary(t *testing.T) {
	e := NewEvaluator(DefaultToleranceMeters)
	fence := Fence{Latitude: 30.0, Longitude: 120.0, RadiusMeters: 500}

	edge := e.Evaluate(fence, northOf(30.0, 550-1e-6), 120.0)
	assert.True(t, edge.Accepted, "distance %.9f", edge.DistanceMeters)
	assert.Equal(t, 550.0, edge.AllowedMeters)

	beyond := e.Evaluate(fence, northOf(30.0, 551), 120.0)
	assert.False(t, beyond.Accepted)
	assert.InDelta(t, 551, beyond.DistanceMeters, 1e-6)
}

func TestEvaluator_ExactAllowanceIsAccepted(t *testing.T) {
	e := NewEvaluator(50)
	fence := Fence{Latitude: 0, Longitude: 0, RadiusMeters: 0}
	v := e.Evaluate(fence, 0, 0)
	assert.True(t, v.Accepted)

	// Without tolerance a radius equal to the computed distance still accepts.
	strict := NewEvaluator(0)
	lat := northOf(0, 700)
	d := Distance(lat, 0, 0, 0)
	fence.RadiusMeters = d
	assert.True(t, strict.Evaluate(fence, lat, 0).Accepted)
	fence.RadiusMeters = d - 1
	assert.False(t, strict.Evaluate(fence, lat, 0).Accepted)
}

func TestNewEvaluator_NegativeToleranceFallsBack(t *testing.T) {
	assert.Equal(t, DefaultToleranceMeters, NewEvaluator(-1).Tolerance())
	assert.Equal(t, 0.0, NewEvaluator(0).Tolerance())
}
