package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/blue-thumb/triangulate/internal/fetcher"
	"github.com/blue-thumb/triangulate/internal/pipeline"
	"github.com/blue-thumb/triangulate/internal/store"
	"github.com/blue-thumb/triangulate/pkg/wqp"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "triangulate.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initWQP() wqp.Client {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.WQP.UserAgent,
		Timeout:    time.Duration(cfg.WQP.TimeoutSecs) * time.Second,
		MaxRetries: cfg.WQP.MaxRetries,
		RatePerSec: cfg.WQP.RatePerSec,
	})
	return wqp.NewClient(wqp.WithBaseURL(cfg.WQP.BaseURL), wqp.WithFetcher(f))
}

func portalQuery() wqp.Query {
	return wqp.Query{
		StateCode:      cfg.DataSources.StateCode,
		Characteristic: cfg.DataSources.Characteristic,
		SiteType:       cfg.DataSources.SiteType,
		SampleMedia:    cfg.DataSources.SampleMedia,
		StartDate:      cfg.DataSources.DateRange.Start,
		EndDate:        cfg.DataSources.DateRange.End,
	}
}

// initPipeline wires a Pipeline and its store. The caller closes the store.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}
	return pipeline.New(cfg, st, initWQP()), st, nil
}
