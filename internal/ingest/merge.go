// Package ingest turns raw Water Quality Portal exports into cleaned
// Observation sets ready for matching.
package ingest

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/blue-thumb/triangulate/internal/fetcher"
)

// Portal column names referenced by the merge and clean steps.
const (
	colOrganization   = "OrganizationIdentifier"
	colSiteID         = "MonitoringLocationIdentifier"
	colCharacteristic = "CharacteristicName"
	colActivityDate   = "ActivityStartDate"
	colResultValue    = "ResultMeasureValue"
	colResultUnits    = "ResultMeasure/MeasureUnitCode"
	colDetectionText  = "ResultDetectionConditionText"
	colLatitude       = "LatitudeMeasure"
	colLongitude      = "LongitudeMeasure"
)

// MergeStationCoords joins station coordinates onto result rows by
// MonitoringLocationIdentifier and writes the merged CSV to outPath. Result
// rows whose station is unknown keep empty coordinate fields; the clean step
// drops them.
func MergeStationCoords(ctx context.Context, resultsPath, stationsPath, outPath string) (int, error) {
	stations, err := loadStationCoords(ctx, stationsPath)
	if err != nil {
		return 0, err
	}
	zap.L().Info("ingest: station coordinates loaded", zap.Int("stations", len(stations)))

	in, err := os.Open(resultsPath)
	if err != nil {
		return 0, eris.Wrap(err, "ingest: open results")
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(outPath)
	if err != nil {
		return 0, eris.Wrap(err, "ingest: create merged file")
	}
	defer out.Close() //nolint:errcheck

	w := csv.NewWriter(out)

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, in, fetcher.CSVOptions{HasHeader: true, HeaderCh: headerCh, LazyQuotes: true})

	header := <-headerCh
	if header == nil {
		return 0, eris.New("ingest: results file has no header")
	}
	cols := mapColumns(header)
	siteIdx, ok := cols[colSiteID]
	if !ok {
		return 0, eris.Errorf("ingest: results file missing %s column", colSiteID)
	}

	if err := w.Write(append(append([]string{}, header...), colLatitude, colLongitude)); err != nil {
		return 0, eris.Wrap(err, "ingest: write merged header")
	}

	var merged int
	for row := range rowCh {
		lat, lon := "", ""
		if c, ok := stations[getCol(row, siteIdx)]; ok {
			lat, lon = c[0], c[1]
		}
		if err := w.Write(append(append([]string{}, row...), lat, lon)); err != nil {
			return merged, eris.Wrap(err, "ingest: write merged row")
		}
		merged++
	}
	if err := <-errCh; err != nil {
		return merged, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return merged, eris.Wrap(err, "ingest: flush merged file")
	}
	return merged, nil
}

// loadStationCoords reads the station export into a site -> {lat, lon} map.
// The first occurrence of a site wins, matching a drop-duplicates join.
func loadStationCoords(ctx context.Context, path string) (map[string][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open stations")
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{HasHeader: true, HeaderCh: headerCh, LazyQuotes: true})

	header := <-headerCh
	if header == nil {
		return nil, eris.New("ingest: stations file has no header")
	}
	cols := mapColumns(header)
	siteIdx, ok := cols[colSiteID]
	if !ok {
		return nil, eris.Errorf("ingest: stations file missing %s column", colSiteID)
	}
	latIdx, ok := cols[colLatitude]
	if !ok {
		return nil, eris.Errorf("ingest: stations file missing %s column", colLatitude)
	}
	lonIdx, ok := cols[colLongitude]
	if !ok {
		return nil, eris.Errorf("ingest: stations file missing %s column", colLongitude)
	}

	stations := make(map[string][2]string)
	for row := range rowCh {
		site := getCol(row, siteIdx)
		if site == "" {
			continue
		}
		if _, seen := stations[site]; seen {
			continue
		}
		stations[site] = [2]string{getCol(row, latIdx), getCol(row, lonIdx)}
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return stations, nil
}
