// Package report renders the outputs of a triangulation run: the matched
// pairs table (CSV and XLSX), the summary statistics text file, the
// validation scatter plot, and the parameter snapshot.
package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/blue-thumb/triangulate/internal/model"
)

// pairColumns is the matched_pairs.csv header. Downstream notebooks key on
// these names, so the order is fixed.
var pairColumns = []string{
	"Vol_SiteID", "Pro_SiteID",
	"Vol_Organization", "Pro_Organization",
	"Vol_Value", "Pro_Value",
	"Vol_Units", "Pro_Units",
	"Vol_DateTime", "Pro_DateTime",
	"Vol_Lat", "Vol_Lon",
	"Pro_Lat", "Pro_Lon",
	"Distance_m", "Time_Diff_hours",
}

const pairTimeLayout = "2006-01-02 15:04:05"

func pairRecord(p model.MatchedPair) []string {
	return []string{
		p.VolSiteID, p.ProSiteID,
		p.VolOrganization, p.ProOrganization,
		formatFloat(p.VolValue), formatFloat(p.ProValue),
		p.VolUnits, p.ProUnits,
		p.VolDateTime.Format(pairTimeLayout), p.ProDateTime.Format(pairTimeLayout),
		formatFloat(p.VolLat), formatFloat(p.VolLon),
		formatFloat(p.ProLat), formatFloat(p.ProLon),
		formatFloat(p.DistanceMeters), formatFloat(p.TimeDiffHours),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WritePairsCSV writes the matched pairs to path in their match order.
func WritePairsCSV(path string, pairs []model.MatchedPair) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create pairs csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(pairColumns); err != nil {
		return eris.Wrap(err, "report: write pairs header")
	}
	for _, p := range pairs {
		if err := w.Write(pairRecord(p)); err != nil {
			return eris.Wrap(err, "report: write pair")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "report: flush pairs csv")
	}
	return eris.Wrap(f.Close(), "report: close pairs csv")
}

// ReadPairsCSV loads a matched pairs file written by WritePairsCSV.
func ReadPairsCSV(path string) ([]model.MatchedPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "report: open pairs csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "report: read pairs csv")
	}
	if len(records) == 0 {
		return nil, eris.New("report: pairs csv is empty")
	}

	var pairs []model.MatchedPair
	for i, rec := range records[1:] {
		p, err := parsePairRecord(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "report: pairs csv row %d", i+2)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func parsePairRecord(rec []string) (model.MatchedPair, error) {
	var p model.MatchedPair
	if len(rec) != len(pairColumns) {
		return p, eris.Errorf("expected %d columns, got %d", len(pairColumns), len(rec))
	}

	p.VolSiteID, p.ProSiteID = rec[0], rec[1]
	p.VolOrganization, p.ProOrganization = rec[2], rec[3]
	p.VolUnits, p.ProUnits = rec[6], rec[7]

	floats := map[int]*float64{
		4: &p.VolValue, 5: &p.ProValue,
		10: &p.VolLat, 11: &p.VolLon,
		12: &p.ProLat, 13: &p.ProLon,
		14: &p.DistanceMeters, 15: &p.TimeDiffHours,
	}
	for idx, dst := range floats {
		v, err := strconv.ParseFloat(rec[idx], 64)
		if err != nil {
			return p, eris.Wrapf(err, "column %s", pairColumns[idx])
		}
		*dst = v
	}

	for idx, dst := range map[int]*time.Time{8: &p.VolDateTime, 9: &p.ProDateTime} {
		t, err := time.ParseInLocation(pairTimeLayout, rec[idx], time.UTC)
		if err != nil {
			return p, eris.Wrapf(err, "column %s", pairColumns[idx])
		}
		*dst = t
	}
	return p, nil
}
