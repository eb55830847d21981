package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full triangulation pipeline",
	Long:  "Fetches portal exports, cleans and splits the data, matches pairs, fits the regression, and writes all report artifacts. The run is recorded in the run store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := p.Run(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("run complete", zap.String("run_id", run.ID))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
