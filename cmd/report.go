package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blue-thumb/triangulate/internal/model"
	"github.com/blue-thumb/triangulate/internal/pipeline"
	"github.com/blue-thumb/triangulate/internal/report"
	"github.com/blue-thumb/triangulate/internal/triangulate"
)

var (
	reportPairsPath string
	reportOutDir    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate report artifacts from a matched pairs file",
	Long:  "Refits the regression over an existing matched_pairs.csv and rewrites the summary, workbook, plot, and interactive chart.",
	RunE: func(cmd *cobra.Command, args []string) error {
		pairsPath := reportPairsPath
		if pairsPath == "" {
			pairsPath = filepath.Join(cfg.Output.Results, report.PairsCSVName)
		}
		outDir := reportOutDir
		if outDir == "" {
			outDir = cfg.Output.Results
		}

		pairs, err := report.ReadPairsCSV(pairsPath)
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			return eris.Errorf("no pairs in %s", pairsPath)
		}

		var summary *model.RegressionSummary
		summary, err = triangulate.Summarize(pairs)
		if eris.Is(err, triangulate.ErrInsufficientSample) {
			zap.L().Warn("too few pairs for regression", zap.Int("pairs", len(pairs)))
			summary = nil
		} else if err != nil {
			return err
		}

		if err := report.WriteAll(outDir, pairs, summary, pipeline.ParamsFromConfig(cfg)); err != nil {
			return err
		}

		if summary != nil {
			os.Stdout.WriteString(report.FormatSummary(*summary))
		}
		zap.L().Info("report complete", zap.String("output_dir", outDir), zap.Int("pairs", len(pairs)))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPairsPath, "pairs", "", "matched pairs CSV to report on (default: results dir)")
	reportCmd.Flags().StringVar(&reportOutDir, "out", "", "output directory (default: results dir)")
	rootCmd.AddCommand(reportCmd)
}
