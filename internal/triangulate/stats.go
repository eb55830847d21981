package triangulate

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/blue-thumb/triangulate/internal/model"
)

// ErrInsufficientSample is returned when fewer than two matched pairs are
// available; regression is undefined below that.
var ErrInsufficientSample = eris.New("insufficient sample: need at least 2 matched pairs")

// Summarize fits volunteer concentrations (Y) against professional
// concentrations (X) over the matched pairs with ordinary least squares and
// returns slope, intercept, R², the two-sided p-value for the null hypothesis
// of zero slope, and the standard error of the slope.
func Summarize(pairs []model.MatchedPair) (*model.RegressionSummary, error) {
	n := len(pairs)
	if n < 2 {
		return nil, eris.Wrapf(ErrInsufficientSample, "got %d", n)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range pairs {
		xs[i] = p.ProValue
		ys[i] = p.VolValue
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r := stat.Correlation(xs, ys, nil)
	r2 := r * r

	pValue, stdErr := slopeSignificance(xs, ys, slope, intercept, r2, n)

	return &model.RegressionSummary{
		N:         n,
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		PValue:    pValue,
		StdErr:    stdErr,
	}, nil
}

// slopeSignificance computes the two-sided p-value for slope != 0 via
// Student's t with n-2 degrees of freedom, plus the slope standard error.
func slopeSignificance(xs, ys []float64, slope, intercept, r2 float64, n int) (pValue, stdErr float64) {
	if n < 3 {
		// One degree of freedom short of a t test; scipy reports p=1 here
		// for a two-point fit, which is always exact.
		return 1, math.Inf(1)
	}

	var sse, sxx float64
	meanX := stat.Mean(xs, nil)
	for i := range xs {
		resid := ys[i] - (slope*xs[i] + intercept)
		sse += resid * resid
		dx := xs[i] - meanX
		sxx += dx * dx
	}

	if sxx == 0 {
		return math.NaN(), math.NaN()
	}
	stdErr = math.Sqrt(sse / float64(n-2) / sxx)

	// A perfect fit drives the residual variance to zero; the t statistic
	// diverges and the p-value collapses to 0.
	if stdErr == 0 || r2 >= 1 {
		return 0, stdErr
	}

	t := math.Abs(slope / stdErr)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.Survival(t), stdErr
}
