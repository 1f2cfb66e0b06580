// Package geo evaluates reported device positions against circular
// check-in fences.
package geo

import "math"

// EarthRadiusMeters is the mean radius used by the spherical approximation.
const EarthRadiusMeters = 6371000.0

// DefaultToleranceMeters absorbs typical phone GPS error on top of a fence radius.
const DefaultToleranceMeters = 50.0

// Distance returns the great-circle distance in meters between two
// WGS84-style coordinates using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Fence is a circular region around a check-in point.
type Fence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Verdict is the outcome of evaluating a position against a fence.
type Verdict struct {
	DistanceMeters float64
	AllowedMeters  float64
	Accepted       bool
}

// Evaluator applies a fixed tolerance to every fence.
type Evaluator struct {
	tolerance float64
}

// NewEvaluator returns an evaluator; a negative tolerance falls back to the default.
func NewEvaluator(toleranceMeters float64) *Evaluator {
	if toleranceMeters < 0 {
		toleranceMeters = DefaultToleranceMeters
	}
	return &Evaluator{tolerance: toleranceMeters}
}

// Tolerance returns the allowance added to every radius.
func (e *Evaluator) Tolerance() float64 {
	return e.tolerance
}

// Evaluate accepts the position when it lies within radius plus tolerance.
func (e *Evaluator) Evaluate(f Fence, lat, lon float64) Verdict {
	d := Distance(lat, lon, f.Latitude, f.Longitude)
	allowed := f.RadiusMeters + e.tolerance
	return Verdict{
		DistanceMeters: d,
		AllowedMeters:  allowed,
		Accepted:       d <= allowed,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
