package triangulate

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blue-thumb/triangulate/internal/model"
)

func volunteer(site string, lat, lon float64, ts time.Time, conc float64) model.Observation {
	o := obs(site, lat, lon, ts, conc)
	o.Role = model.RoleVolunteer
	return o
}

func professional(site string, lat, lon float64, ts time.Time, conc float64) model.Observation {
	o := obs(site, lat, lon, ts, conc)
	o.Role = model.RoleProfessional
	return o
}

func testConfig() MatchConfig {
	return MatchConfig{
		MaxDistanceMeters:   100,
		MaxTimeHours:        48,
		MinConcentrationMgL: 25,
		Strategy:            StrategyAll,
	}
}

// offsetLat shifts latitude by roughly the given number of meters.
func offsetLat(lat, meters float64) float64 {
	return lat + meters/111320.0
}

func TestMatchThresholdsInclusive(t *testing.T) {
	t.Parallel()
	base := volunteer("V1", 35.0, -97.0, baseTime, 30)

	tests := []struct {
		name string
		pro  model.Observation
		want int
	}{
		{"well inside", professional("P1", 35.0, -97.0, baseTime.Add(time.Hour), 50), 1},
		{"just over distance", professional("P2", offsetLat(35.0, 150), -97.0, baseTime, 50), 0},
		{"just over time", professional("P3", 35.0, -97.0, baseTime.Add(49*time.Hour), 50), 0},
		{"time exactly at threshold", professional("P4", 35.0, -97.0, baseTime.Add(48*time.Hour), 50), 1},
		{"concentration at gate is rejected", professional("P5", 35.0, -97.0, baseTime, 25), 0},
		{"concentration just above gate", professional("P6", 35.0, -97.0, baseTime, 25.01), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := Match([]model.Observation{base}, []model.Observation{tt.pro}, testConfig())
			require.NoError(t, err)
			assert.Len(t, pairs, tt.want)
		})
	}
}

func TestMatchInvariantsHold(t *testing.T) {
	t.Parallel()
	cfg := testConfig()

	var vols, pros []model.Observation
	for i := range 20 {
		vols = append(vols, volunteer("V", offsetLat(35.0, float64(i*20)), -97.0, baseTime.Add(time.Duration(i)*6*time.Hour), 30))
		pros = append(pros, professional("P", offsetLat(35.0, float64(i*25)), -97.0, baseTime.Add(time.Duration(i)*8*time.Hour), float64(20+i)))
	}

	pairs, err := Match(vols, pros, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, pairs)

	for _, p := range pairs {
		assert.LessOrEqual(t, p.DistanceMeters, cfg.MaxDistanceMeters)
		assert.LessOrEqual(t, p.TimeDiffHours, cfg.MaxTimeHours)
		assert.Greater(t, p.ProValue, cfg.MinConcentrationMgL)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	t.Parallel()
	v := []model.Observation{volunteer("V1", 35, -97, baseTime, 30)}
	p := []model.Observation{professional("P1", 35, -97, baseTime, 50)}

	pairs, err := Match(nil, p, testConfig())
	require.NoError(t, err)
	assert.Empty(t, pairs)

	pairs, err = Match(v, nil, testConfig())
	require.NoError(t, err)
	assert.Empty(t, pairs)

	pairs, err = Match(nil, nil, testConfig())
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestMatchOrderingAndIdempotence(t *testing.T) {
	t.Parallel()
	vols := []model.Observation{
		volunteer("V1", 35.0, -97.0, baseTime, 30),
		volunteer("V2", 35.0, -97.0, baseTime, 40),
	}
	pros := []model.Observation{
		professional("P1", 35.0, -97.0, baseTime, 50),
		professional("P2", 35.0, -97.0, baseTime, 60),
	}

	first, err := Match(vols, pros, testConfig())
	require.NoError(t, err)
	require.Len(t, first, 4)

	// Volunteers outer, professionals inner, both in input order.
	assert.Equal(t, "V1", first[0].VolSiteID)
	assert.Equal(t, "P1", first[0].ProSiteID)
	assert.Equal(t, "P2", first[1].ProSiteID)
	assert.Equal(t, "V2", first[2].VolSiteID)

	second, err := Match(vols, pros, testConfig())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMatchManyToMany(t *testing.T) {
	t.Parallel()
	vols := []model.Observation{volunteer("V1", 35.0, -97.0, baseTime, 30)}
	pros := []model.Observation{
		professional("P1", 35.0, -97.0, baseTime, 50),
		professional("P2", 35.0, -97.0, baseTime.Add(2*time.Hour), 60),
		professional("P3", 35.0, -97.0, baseTime.Add(4*time.Hour), 70),
	}

	pairs, err := Match(vols, pros, testConfig())
	require.NoError(t, err)
	assert.Len(t, pairs, 3)
}

func TestMatchMonotoneInThresholds(t *testing.T) {
	t.Parallel()
	var vols, pros []model.Observation
	for i := range 15 {
		vols = append(vols, volunteer("V", offsetLat(35.0, float64(i*40)), -97.0, baseTime.Add(time.Duration(i)*12*time.Hour), 30))
		pros = append(pros, professional("P", offsetLat(35.0, float64(i*45)), -97.0, baseTime.Add(time.Duration(i)*10*time.Hour), 50))
	}

	cfg := testConfig()
	prev := -1
	for _, maxD := range []float64{10, 50, 100, 500, 5000} {
		cfg.MaxDistanceMeters = maxD
		pairs, err := Match(vols, pros, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(pairs), prev, "match count must be non-decreasing in distance threshold")
		prev = len(pairs)
	}

	cfg = testConfig()
	cfg.MaxDistanceMeters = 5000
	prev = -1
	for _, maxT := range []float64{1, 12, 48, 96, 1000} {
		cfg.MaxTimeHours = maxT
		pairs, err := Match(vols, pros, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(pairs), prev, "match count must be non-decreasing in time threshold")
		prev = len(pairs)
	}
}

func TestMatchNearestStrategy(t *testing.T) {
	t.Parallel()
	vols := []model.Observation{volunteer("V1", 35.0, -97.0, baseTime, 30)}
	pros := []model.Observation{
		professional("PFar", offsetLat(35.0, 80), -97.0, baseTime, 50),
		professional("PNear", offsetLat(35.0, 10), -97.0, baseTime, 60),
		professional("PMid", offsetLat(35.0, 40), -97.0, baseTime, 70),
	}

	cfg := testConfig()
	cfg.Strategy = StrategyNearest
	pairs, err := Match(vols, pros, cfg)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "PNear", pairs[0].ProSiteID)
}

func TestMatchInvalidObservationAborts(t *testing.T) {
	t.Parallel()
	vols := []model.Observation{
		volunteer("V1", 35.0, -97.0, baseTime, 30),
		volunteer("V2", math.NaN(), -97.0, baseTime, 30),
	}
	pros := []model.Observation{professional("P1", 35.0, -97.0, baseTime, 50)}

	_, err := Match(vols, pros, testConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidObservation)

	_, err = Match(pros, vols, testConfig())
	assert.ErrorIs(t, err, model.ErrInvalidObservation)
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	s, err := ParseStrategy("all")
	require.NoError(t, err)
	assert.Equal(t, StrategyAll, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyAll, s)

	s, err = ParseStrategy("nearest")
	require.NoError(t, err)
	assert.Equal(t, StrategyNearest, s)

	_, err = ParseStrategy("closest")
	assert.Error(t, err)
}

func TestMatchParallelEquivalent(t *testing.T) {
	t.Parallel()
	var vols, pros []model.Observation
	for i := range 50 {
		vols = append(vols, volunteer("V", offsetLat(35.0, float64(i*15)), -97.0, baseTime.Add(time.Duration(i)*3*time.Hour), 30))
	}
	for i := range 40 {
		pros = append(pros, professional("P", offsetLat(35.0, float64(i*18)), -97.0, baseTime.Add(time.Duration(i)*4*time.Hour), float64(20+i)))
	}

	want, err := Match(vols, pros, testConfig())
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 2, 8} {
		got, err := MatchParallel(context.Background(), vols, pros, testConfig(), workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}
