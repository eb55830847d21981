package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download Water Quality Portal exports",
	Long:  "Downloads the Result and Station exports for the configured state, characteristic, and date range into the raw data directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := os.MkdirAll(cfg.Output.RawData, 0o755); err != nil {
			return eris.Wrap(err, "create raw data dir")
		}

		client := initWQP()
		query := portalQuery()

		var resultsPath, stationsPath string
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			path, err := client.DownloadResults(gCtx, query, cfg.Output.RawData)
			resultsPath = path
			return err
		})
		g.Go(func() error {
			path, err := client.DownloadStations(gCtx, query, cfg.Output.RawData)
			stationsPath = path
			return err
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "fetch portal exports")
		}

		zap.L().Info("fetch complete",
			zap.String("results", resultsPath),
			zap.String("stations", stationsPath),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
