// Package wqp is a client for the EPA Water Quality Portal
// (https://www.waterqualitydata.us/webservices_documentation/). The portal
// serves Result and Station searches as zipped CSV exports.
package wqp

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/blue-thumb/triangulate/internal/fetcher"
)

const (
	resultPath  = "/data/Result/search"
	stationPath = "/data/Station/search"
)

// Query selects which portal records to export.
type Query struct {
	StateCode      string // FIPS style, e.g. "US:40"
	Characteristic string // e.g. "Chloride"
	SiteType       string // e.g. "Stream"
	SampleMedia    string // e.g. "Water"
	StartDate      string // ISO YYYY-MM-DD
	EndDate        string // ISO YYYY-MM-DD
}

// Client downloads portal exports.
type Client interface {
	// DownloadResults fetches the Result export and returns the extracted CSV path.
	DownloadResults(ctx context.Context, q Query, destDir string) (string, error)
	// DownloadStations fetches the Station export and returns the extracted CSV path.
	DownloadStations(ctx context.Context, q Query, destDir string) (string, error)
}

type client struct {
	baseURL string
	fetcher fetcher.Fetcher
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the portal base URL.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithFetcher overrides the underlying fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *client) {
		c.fetcher = f
	}
}

// NewClient creates a portal client.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL: "https://www.waterqualitydata.us",
		fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) DownloadResults(ctx context.Context, q Query, destDir string) (string, error) {
	return c.download(ctx, resultPath, q, destDir, "results.zip")
}

func (c *client) DownloadStations(ctx context.Context, q Query, destDir string) (string, error) {
	return c.download(ctx, stationPath, q, destDir, "stations.zip")
}

func (c *client) download(ctx context.Context, path string, q Query, destDir, zipName string) (string, error) {
	searchURL, err := c.searchURL(path, q)
	if err != nil {
		return "", err
	}

	zap.L().Info("wqp: downloading export",
		zap.String("endpoint", path),
		zap.String("state", q.StateCode),
		zap.String("characteristic", q.Characteristic),
	)

	zipPath := filepath.Join(destDir, zipName)
	n, err := c.fetcher.DownloadToFile(ctx, searchURL, zipPath)
	if err != nil {
		return "", eris.Wrapf(err, "wqp: download %s", path)
	}
	zap.L().Debug("wqp: export downloaded", zap.String("path", zipPath), zap.Int64("bytes", n))

	csvPath, err := fetcher.ExtractZIPCSV(zipPath, destDir)
	if err != nil {
		return "", eris.Wrapf(err, "wqp: extract %s", path)
	}
	return csvPath, nil
}

// searchURL builds the export URL. The portal expects MM-DD-YYYY dates.
func (c *client) searchURL(path string, q Query) (string, error) {
	startDate, err := portalDate(q.StartDate)
	if err != nil {
		return "", eris.Wrap(err, "wqp: start date")
	}
	endDate, err := portalDate(q.EndDate)
	if err != nil {
		return "", eris.Wrap(err, "wqp: end date")
	}

	v := url.Values{}
	v.Set("statecode", q.StateCode)
	v.Set("characteristicName", q.Characteristic)
	v.Set("siteType", q.SiteType)
	v.Set("sampleMedia", q.SampleMedia)
	v.Set("startDateLo", startDate)
	v.Set("startDateHi", endDate)
	v.Set("mimeType", "csv")
	v.Set("zip", "yes")

	return c.baseURL + path + "?" + v.Encode(), nil
}

// portalDate converts ISO YYYY-MM-DD to the portal's MM-DD-YYYY form.
func portalDate(iso string) (string, error) {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return "", eris.Errorf("expected YYYY-MM-DD, got %q", iso)
	}
	return fmt.Sprintf("%s-%s-%s", parts[1], parts[2], parts[0]), nil
}
