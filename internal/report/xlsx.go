package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/blue-thumb/triangulate/internal/model"
)

// WritePairsXLSX writes the matched pairs workbook: a Matched Pairs sheet
// with the same columns as the CSV, plus a Summary sheet with the regression
// statistics.
func WritePairsXLSX(path string, pairs []model.MatchedPair, summary *model.RegressionSummary) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Matched Pairs")
	if err != nil {
		return eris.Wrap(err, "report: add pairs sheet")
	}

	header := sheet.AddRow()
	for _, col := range pairColumns {
		header.AddCell().SetString(col)
	}

	for _, p := range pairs {
		row := sheet.AddRow()
		row.AddCell().SetString(p.VolSiteID)
		row.AddCell().SetString(p.ProSiteID)
		row.AddCell().SetString(p.VolOrganization)
		row.AddCell().SetString(p.ProOrganization)
		row.AddCell().SetFloat(p.VolValue)
		row.AddCell().SetFloat(p.ProValue)
		row.AddCell().SetString(p.VolUnits)
		row.AddCell().SetString(p.ProUnits)
		row.AddCell().SetString(p.VolDateTime.Format(pairTimeLayout))
		row.AddCell().SetString(p.ProDateTime.Format(pairTimeLayout))
		row.AddCell().SetFloat(p.VolLat)
		row.AddCell().SetFloat(p.VolLon)
		row.AddCell().SetFloat(p.ProLat)
		row.AddCell().SetFloat(p.ProLon)
		row.AddCell().SetFloat(p.DistanceMeters)
		row.AddCell().SetFloat(p.TimeDiffHours)
	}

	if summary != nil {
		stats, err := f.AddSheet("Summary")
		if err != nil {
			return eris.Wrap(err, "report: add summary sheet")
		}
		addStat := func(label string, set func(*xlsx.Cell)) {
			row := stats.AddRow()
			row.AddCell().SetString(label)
			set(row.AddCell())
		}
		addStat("Sample Size (N)", func(c *xlsx.Cell) { c.SetInt(summary.N) })
		addStat("R-squared", func(c *xlsx.Cell) { c.SetFloat(summary.RSquared) })
		addStat("Slope", func(c *xlsx.Cell) { c.SetFloat(summary.Slope) })
		addStat("Intercept", func(c *xlsx.Cell) { c.SetFloat(summary.Intercept) })
		addStat("P-value", func(c *xlsx.Cell) { c.SetFloat(summary.PValue) })
		addStat("Standard Error", func(c *xlsx.Cell) { c.SetFloat(summary.StdErr) })
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}
