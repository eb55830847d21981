package triangulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blue-thumb/triangulate/internal/model"
)

func pairsFrom(xy [][2]float64) []model.MatchedPair {
	pairs := make([]model.MatchedPair, len(xy))
	for i, p := range xy {
		pairs[i] = model.MatchedPair{ProValue: p[0], VolValue: p[1]}
	}
	return pairs
}

func TestSummarizeInsufficientSample(t *testing.T) {
	t.Parallel()

	_, err := Summarize(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientSample)

	_, err = Summarize(pairsFrom([][2]float64{{10, 8}}))
	assert.ErrorIs(t, err, ErrInsufficientSample)
}

func TestSummarizePerfectFit(t *testing.T) {
	t.Parallel()

	s, err := Summarize(pairsFrom([][2]float64{{1, 2}, {2, 4}, {3, 6}}))
	require.NoError(t, err)

	assert.Equal(t, 3, s.N)
	assert.InDelta(t, 2.0, s.Slope, 1e-12)
	assert.InDelta(t, 0.0, s.Intercept, 1e-12)
	assert.InDelta(t, 1.0, s.RSquared, 1e-12)
	assert.InDelta(t, 0.0, s.PValue, 1e-12)
}

func TestSummarizeKnownFit(t *testing.T) {
	t.Parallel()

	// Hand-computed OLS: slope 0.94, intercept 0.15, r² 4.7²/(5·4.5),
	// t = slope/stderr ≈ 10.379 on 2 degrees of freedom.
	s, err := Summarize(pairsFrom([][2]float64{
		{1, 1.1}, {2, 1.9}, {3, 3.2}, {4, 3.8},
	}))
	require.NoError(t, err)

	assert.Equal(t, 4, s.N)
	assert.InDelta(t, 0.94, s.Slope, 1e-12)
	assert.InDelta(t, 0.15, s.Intercept, 1e-12)
	assert.InDelta(t, 0.981778, s.RSquared, 1e-6)
	assert.InDelta(t, 0.009153, s.PValue, 1e-5)
	assert.InDelta(t, 0.090554, s.StdErr, 1e-5)
}

func TestSummarizeTwoPoints(t *testing.T) {
	t.Parallel()

	// Two points fit exactly; no residual degrees of freedom remain, so the
	// p-value is reported as 1 rather than dividing by zero.
	s, err := Summarize(pairsFrom([][2]float64{{10, 8}, {20, 15}}))
	require.NoError(t, err)

	assert.Equal(t, 2, s.N)
	assert.InDelta(t, 0.7, s.Slope, 1e-12)
	assert.InDelta(t, 1.0, s.PValue, 1e-12)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	t.Parallel()

	forward := pairsFrom([][2]float64{{1, 1.1}, {2, 1.9}, {3, 3.2}, {4, 3.8}})
	reversed := pairsFrom([][2]float64{{4, 3.8}, {3, 3.2}, {2, 1.9}, {1, 1.1}})

	a, err := Summarize(forward)
	require.NoError(t, err)
	b, err := Summarize(reversed)
	require.NoError(t, err)

	assert.InDelta(t, a.Slope, b.Slope, 1e-12)
	assert.InDelta(t, a.RSquared, b.RSquared, 1e-12)
	assert.InDelta(t, a.PValue, b.PValue, 1e-12)
}
