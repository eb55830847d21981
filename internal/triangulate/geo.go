// Package triangulate implements virtual triangulation: spatial-temporal
// matching of volunteer observations against professional observations, and
// the regression statistics quantifying agreement between the two sources.
package triangulate

import (
	"math"

	"github.com/blue-thumb/triangulate/internal/model"
)

// earthRadiusMeters is the spherical-Earth approximation used by Haversine.
const earthRadiusMeters = 6371000

// Distance returns the great-circle distance between two observations in
// meters, via the Haversine formula. Symmetric; zero for coincident points.
func Distance(a, b model.Observation) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude), nil
}

// haversine computes great-circle distance in meters from decimal degrees.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Rounding can push sqrt(h) fractionally above 1 for identical or
	// near-antipodal points, taking Asin out of its domain.
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// TimeDiff returns the absolute time difference between two observations in
// hours. Symmetric by construction.
func TimeDiff(a, b model.Observation) float64 {
	return math.Abs(a.Timestamp.Sub(b.Timestamp).Hours())
}
