package triangulate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blue-thumb/triangulate/internal/model"
)

func obs(site string, lat, lon float64, ts time.Time, conc float64) model.Observation {
	return model.Observation{
		SiteID:        site,
		Organization:  "ORG",
		Latitude:      lat,
		Longitude:     lon,
		Timestamp:     ts,
		Concentration: conc,
		Units:         "mg/l",
	}
}

var baseTime = time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDistanceIdentity(t *testing.T) {
	t.Parallel()
	a := obs("A", 35.4676, -97.5164, baseTime, 10)
	d, err := Distance(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestDistanceSymmetric(t *testing.T) {
	t.Parallel()
	a := obs("A", 35.4676, -97.5164, baseTime, 10)
	b := obs("B", 36.1540, -95.9928, baseTime, 10)

	ab, err := Distance(a, b)
	require.NoError(t, err)
	ba, err := Distance(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestDistanceOKCToTulsa(t *testing.T) {
	t.Parallel()
	okc := obs("OKC", 35.4676, -97.5164, baseTime, 10)
	tulsa := obs("TUL", 36.1540, -95.9928, baseTime, 10)

	d, err := Distance(okc, tulsa)
	require.NoError(t, err)
	assert.InDelta(t, 160000, d, 2000)
}

func TestDistanceAntipodalClamp(t *testing.T) {
	t.Parallel()
	// Exactly antipodal points sit at half the Earth's circumference; the
	// Asin argument must be clamped rather than wandering out of domain.
	a := obs("A", 0, 0, baseTime, 10)
	b := obs("B", 0, 180, baseTime, 10)

	d, err := Distance(a, b)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*earthRadiusMeters, d, 1)
}

func TestDistanceInvalidCoordinates(t *testing.T) {
	t.Parallel()
	good := obs("G", 35.0, -97.0, baseTime, 10)

	tests := []struct {
		name string
		bad  model.Observation
	}{
		{"nan latitude", obs("B", math.NaN(), -97.0, baseTime, 10)},
		{"inf longitude", obs("B", 35.0, math.Inf(1), baseTime, 10)},
		{"latitude over 90", obs("B", 91, -97.0, baseTime, 10)},
		{"longitude under -180", obs("B", 35.0, -181, baseTime, 10)},
		{"zero timestamp", obs("B", 35.0, -97.0, time.Time{}, 10)},
		{"negative concentration", obs("B", 35.0, -97.0, baseTime, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Distance(good, tt.bad)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidObservation)

			_, err = Distance(tt.bad, good)
			assert.ErrorIs(t, err, model.ErrInvalidObservation)
		})
	}
}

func TestTimeDiff(t *testing.T) {
	t.Parallel()
	a := obs("A", 35, -97, baseTime, 10)
	b := obs("B", 35, -97, baseTime.Add(36*time.Hour), 10)

	assert.InDelta(t, 36, TimeDiff(a, b), 1e-9)
	assert.Equal(t, TimeDiff(a, b), TimeDiff(b, a))
	assert.Zero(t, TimeDiff(a, a))
}
