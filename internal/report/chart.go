package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rotisserie/eris"

	"github.com/blue-thumb/triangulate/internal/model"
)

// RenderScatterChart writes an interactive HTML scatter of the matched pairs
// to w, volunteer concentration against professional concentration.
func RenderScatterChart(w io.Writer, pairs []model.MatchedPair, summary model.RegressionSummary) error {
	maxVal := 0.0
	data := make([]opts.ScatterData, 0, len(pairs))
	for _, p := range pairs {
		data = append(data, opts.ScatterData{
			Value: []interface{}{p.ProValue, p.VolValue},
		})
		maxVal = math.Max(maxVal, math.Max(p.ProValue, p.VolValue))
	}
	pad := float32(maxVal * 1.1)
	if pad <= 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Virtual Triangulation", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Volunteer vs. Professional Measurements",
			Subtitle: fmt.Sprintf("N=%d slope=%.3f R²=%.3f", summary.N, summary.Slope, summary.RSquared),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: pad, Name: "Professional (mg/L)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: pad, Name: "Volunteer (mg/L)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("matched pairs", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	if err := scatter.Render(w); err != nil {
		return eris.Wrap(err, "report: render scatter chart")
	}
	return nil
}
