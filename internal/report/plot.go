package report

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/blue-thumb/triangulate/internal/model"
)

// WriteValidationPlot renders the validation scatter to a PNG at path:
// matched pairs as points, the fitted regression line, and a dashed 1:1
// reference line over a square axis range.
func WriteValidationPlot(path string, pairs []model.MatchedPair, summary model.RegressionSummary) error {
	if len(pairs) == 0 {
		return eris.New("report: no pairs to plot")
	}

	pts := make(plotter.XYs, len(pairs))
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for i, p := range pairs {
		pts[i].X = p.ProValue
		pts[i].Y = p.VolValue
		minVal = math.Min(minVal, math.Min(p.ProValue, p.VolValue))
		maxVal = math.Max(maxVal, math.Max(p.ProValue, p.VolValue))
	}
	lo, hi := minVal*0.9, maxVal*1.1
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Volunteer vs. Professional Measurements (N=%d)", summary.N)
	p.X.Label.Text = "Professional (mg/L)"
	p.Y.Label.Text = "Volunteer (mg/L)"
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return eris.Wrap(err, "report: build scatter")
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)
	p.Legend.Add("Matched Pairs", scatter)

	fit, err := plotter.NewLine(plotter.XYs{
		{X: lo, Y: summary.Slope*lo + summary.Intercept},
		{X: hi, Y: summary.Slope*hi + summary.Intercept},
	})
	if err != nil {
		return eris.Wrap(err, "report: build regression line")
	}
	fit.LineStyle.Width = vg.Points(2)
	fit.LineStyle.Color = color.RGBA{R: 200, A: 255}
	p.Add(fit)
	p.Legend.Add(fmt.Sprintf("Regression (slope=%.3f)", summary.Slope), fit)

	ref, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return eris.Wrap(err, "report: build reference line")
	}
	ref.LineStyle.Width = vg.Points(1)
	ref.LineStyle.Color = color.Gray{Y: 60}
	ref.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(ref)
	p.Legend.Add("1:1 Reference", ref)

	p.Legend.Top = false
	p.Legend.Left = false

	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return eris.Wrap(err, "report: save validation plot")
	}
	return nil
}
