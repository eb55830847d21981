package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/blue-thumb/triangulate/internal/fetcher"
	"github.com/blue-thumb/triangulate/internal/model"
)

// observationHeader is the processed-file schema shared by the clean and
// match commands.
var observationHeader = []string{"SiteID", "Organization", "Latitude", "Longitude", "Timestamp", "Concentration", "Units", "Role"}

// WriteObservations saves cleaned observations as CSV.
func WriteObservations(path string, obs []model.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "ingest: create observations file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(observationHeader); err != nil {
		return eris.Wrap(err, "ingest: write header")
	}
	for _, o := range obs {
		row := []string{
			o.SiteID,
			o.Organization,
			strconv.FormatFloat(o.Latitude, 'f', -1, 64),
			strconv.FormatFloat(o.Longitude, 'f', -1, 64),
			o.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(o.Concentration, 'f', -1, 64),
			o.Units,
			string(o.Role),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "ingest: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "ingest: flush observations file")
}

// ReadObservations loads a processed observations CSV.
func ReadObservations(ctx context.Context, path string) ([]model.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open observations file")
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{HasHeader: true, HeaderCh: headerCh})

	header := <-headerCh
	if header == nil {
		return nil, eris.Errorf("ingest: %s has no header", path)
	}
	cols := mapColumns(header)

	var obs []model.Observation
	for row := range rowCh {
		lat, err := strconv.ParseFloat(getCol(row, cols["Latitude"]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s: bad latitude", path)
		}
		lon, err := strconv.ParseFloat(getCol(row, cols["Longitude"]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s: bad longitude", path)
		}
		conc, err := strconv.ParseFloat(getCol(row, cols["Concentration"]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s: bad concentration", path)
		}
		ts, err := time.Parse(time.RFC3339, getCol(row, cols["Timestamp"]))
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s: bad timestamp", path)
		}

		obs = append(obs, model.Observation{
			SiteID:        getCol(row, cols["SiteID"]),
			Organization:  getCol(row, cols["Organization"]),
			Latitude:      lat,
			Longitude:     lon,
			Timestamp:     ts.UTC(),
			Concentration: conc,
			Units:         getCol(row, cols["Units"]),
			Role:          model.SourceRole(getCol(row, cols["Role"])),
		})
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return obs, nil
}
