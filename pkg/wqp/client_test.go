package wqp

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blue-thumb/triangulate/internal/fetcher"
)

func zipWithCSV(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testQuery() Query {
	return Query{
		StateCode:      "US:40",
		Characteristic: "Chloride",
		SiteType:       "Stream",
		SampleMedia:    "Water",
		StartDate:      "2018-01-01",
		EndDate:        "2023-12-31",
	}
}

func TestDownloadResults(t *testing.T) {
	t.Parallel()
	var gotPath string
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write(zipWithCSV(t, "resultphyschem.csv", "OrganizationIdentifier,ResultMeasureValue\nOKC_WQX,12.5\n"))
	}))
	defer srv.Close()

	c := NewClient(
		WithBaseURL(srv.URL),
		WithFetcher(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, RatePerSec: 1000})),
	)

	csvPath, err := c.DownloadResults(context.Background(), testQuery(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/data/Result/search", gotPath)
	assert.Equal(t, "US:40", gotQuery["statecode"])
	assert.Equal(t, "Chloride", gotQuery["characteristicName"])
	assert.Equal(t, "Stream", gotQuery["siteType"])
	assert.Equal(t, "Water", gotQuery["sampleMedia"])
	assert.Equal(t, "01-01-2018", gotQuery["startDateLo"])
	assert.Equal(t, "12-31-2023", gotQuery["startDateHi"])
	assert.Equal(t, "csv", gotQuery["mimeType"])
	assert.Equal(t, "yes", gotQuery["zip"])

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "OKC_WQX")
}

func TestDownloadStations(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/Station/search", r.URL.Path)
		_, _ = w.Write(zipWithCSV(t, "station.csv", "MonitoringLocationIdentifier,LatitudeMeasure\nOK-1,35.4\n"))
	}))
	defer srv.Close()

	c := NewClient(
		WithBaseURL(srv.URL),
		WithFetcher(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, RatePerSec: 1000})),
	)

	csvPath, err := c.DownloadStations(context.Background(), testQuery(), t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "OK-1")
}

func TestBadDates(t *testing.T) {
	t.Parallel()
	c := NewClient(WithBaseURL("http://example.invalid"))

	q := testQuery()
	q.StartDate = "01/01/2018"
	_, err := c.DownloadResults(context.Background(), q, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}
