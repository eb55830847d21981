package ingest

import (
	"context"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/blue-thumb/triangulate/internal/fetcher"
	"github.com/blue-thumb/triangulate/internal/model"
)

// CleanOptions controls record filtering and the volunteer/professional
// split.
type CleanOptions struct {
	Characteristic      string
	VolunteerOrgs       []string
	ProfessionalOrgs    []string
	MinConcentrationMgL float64
}

// CleanStats reports how many rows survive each filter.
type CleanStats struct {
	Total               int `json:"total"`
	AfterCharacteristic int `json:"after_characteristic"`
	AfterCoordinates    int `json:"after_coordinates"`
	AfterConcentration  int `json:"after_concentration"`
	AfterDates          int `json:"after_dates"`
	Volunteers          int `json:"volunteers"`
	Professionals       int `json:"professionals"`
}

// CleanFile runs Clean over a merged portal CSV on disk.
func CleanFile(ctx context.Context, path string, opts CleanOptions) ([]model.Observation, []model.Observation, CleanStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, CleanStats{}, eris.Wrap(err, "ingest: open merged file")
	}
	defer f.Close() //nolint:errcheck
	return Clean(ctx, f, opts)
}

// Clean filters merged result rows down to valid observations and splits
// them into volunteer and professional sets by organization. In order:
// characteristic filter, coordinate presence, concentration validity (null,
// non-numeric, or negative values and detection-condition rows are dropped),
// date parsing. The professional set is additionally pre-filtered to
// concentrations above the minimum, the same gate the matcher enforces.
func Clean(ctx context.Context, r io.Reader, opts CleanOptions) (volunteers, professionals []model.Observation, stats CleanStats, err error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{HasHeader: true, HeaderCh: headerCh, LazyQuotes: true})

	header := <-headerCh
	if header == nil {
		return nil, nil, stats, eris.New("ingest: merged file has no header")
	}
	cols := mapColumns(header)
	for _, required := range []string{colOrganization, colSiteID, colCharacteristic, colActivityDate, colResultValue, colLatitude, colLongitude} {
		if _, ok := cols[required]; !ok {
			return nil, nil, stats, eris.Errorf("ingest: merged file missing %s column", required)
		}
	}
	detectionIdx, hasDetection := cols[colDetectionText]
	unitsIdx, hasUnits := cols[colResultUnits]

	for row := range rowCh {
		stats.Total++

		if getCol(row, cols[colCharacteristic]) != opts.Characteristic {
			continue
		}
		stats.AfterCharacteristic++

		latStr := getCol(row, cols[colLatitude])
		lonStr := getCol(row, cols[colLongitude])
		if latStr == "" || lonStr == "" {
			continue
		}
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		stats.AfterCoordinates++

		if hasDetection && getCol(row, detectionIdx) != "" {
			continue
		}
		conc, concErr := strconv.ParseFloat(getCol(row, cols[colResultValue]), 64)
		if concErr != nil || conc < 0 {
			continue
		}
		stats.AfterConcentration++

		ts, ok := parseActivityDate(getCol(row, cols[colActivityDate]))
		if !ok {
			continue
		}
		stats.AfterDates++

		obs := model.Observation{
			SiteID:        getCol(row, cols[colSiteID]),
			Organization:  getCol(row, cols[colOrganization]),
			Latitude:      lat,
			Longitude:     lon,
			Timestamp:     ts,
			Concentration: conc,
		}
		if hasUnits {
			obs.Units = getCol(row, unitsIdx)
		}

		switch {
		case slices.Contains(opts.VolunteerOrgs, obs.Organization):
			obs.Role = model.RoleVolunteer
			volunteers = append(volunteers, obs)
		case slices.Contains(opts.ProfessionalOrgs, obs.Organization):
			if conc > opts.MinConcentrationMgL {
				obs.Role = model.RoleProfessional
				professionals = append(professionals, obs)
			}
		}
	}
	if err := <-errCh; err != nil {
		return nil, nil, stats, err
	}

	stats.Volunteers = len(volunteers)
	stats.Professionals = len(professionals)
	zap.L().Info("ingest: clean complete",
		zap.Int("total", stats.Total),
		zap.Int("volunteers", stats.Volunteers),
		zap.Int("professionals", stats.Professionals),
	)
	return volunteers, professionals, stats, nil
}

// activityDateFormats lists the timestamp layouts seen in portal exports,
// tried in order.
var activityDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseActivityDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range activityDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// mapColumns builds a name -> index map from a header row.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		m[strings.TrimSpace(name)] = i
	}
	return m
}

// getCol returns the trimmed value at idx, or "" when the row is short.
func getCol(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
