package report

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/blue-thumb/triangulate/internal/model"
)

// Output file names within the run output directory.
const (
	PairsCSVName  = "matched_pairs.csv"
	PairsXLSXName = "matched_pairs.xlsx"
	SummaryName   = "summary_statistics.txt"
	PlotName      = "validation_plot.png"
	ChartName     = "validation_chart.html"
	ParamsName    = "run_params.yaml"
)

// WriteAll writes every report artifact for a run into dir, creating it if
// needed. The plot, chart, and summary are skipped when summary is nil, which
// happens when too few pairs matched for a regression.
func WriteAll(dir string, pairs []model.MatchedPair, summary *model.RegressionSummary, params model.RunParams) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}

	if err := WritePairsCSV(filepath.Join(dir, PairsCSVName), pairs); err != nil {
		return err
	}
	if err := WritePairsXLSX(filepath.Join(dir, PairsXLSXName), pairs, summary); err != nil {
		return err
	}
	if err := WriteParamsSnapshot(filepath.Join(dir, ParamsName), params); err != nil {
		return err
	}

	if summary == nil {
		zap.L().Warn("skipping summary and plots: no regression summary",
			zap.Int("pairs", len(pairs)))
		return nil
	}

	if err := WriteSummary(filepath.Join(dir, SummaryName), *summary); err != nil {
		return err
	}
	if err := WriteValidationPlot(filepath.Join(dir, PlotName), pairs, *summary); err != nil {
		return err
	}

	chartFile, err := os.Create(filepath.Join(dir, ChartName))
	if err != nil {
		return eris.Wrap(err, "report: create chart file")
	}
	defer chartFile.Close() //nolint:errcheck
	if err := RenderScatterChart(chartFile, pairs, *summary); err != nil {
		return err
	}
	return eris.Wrap(chartFile.Close(), "report: close chart file")
}
