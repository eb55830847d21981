package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blue-thumb/triangulate/internal/ingest"
	"github.com/blue-thumb/triangulate/internal/report"
	"github.com/blue-thumb/triangulate/internal/triangulate"
)

var (
	matchMaxDistance float64
	matchMaxTime     float64
	matchMinConc     float64
	matchStrategy    string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match volunteer and professional observations into pairs",
	Long:  "Pairs cleaned volunteer observations with professional observations within the distance and time thresholds and writes matched_pairs.csv.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		maxDistance := cfg.Matching.MaxDistanceMeters
		if cmd.Flags().Changed("max-distance") {
			maxDistance = matchMaxDistance
		}
		maxTime := cfg.Matching.MaxTimeHours
		if cmd.Flags().Changed("max-time") {
			maxTime = matchMaxTime
		}
		minConc := cfg.Matching.MinConcentrationMgL
		if cmd.Flags().Changed("min-concentration") {
			minConc = matchMinConc
		}
		strategyName := cfg.Matching.MatchStrategy
		if cmd.Flags().Changed("strategy") {
			strategyName = matchStrategy
		}
		strategy, err := triangulate.ParseStrategy(strategyName)
		if err != nil {
			return err
		}

		suffix := strings.ToLower(cfg.DataSources.Characteristic)
		volunteers, err := ingest.ReadObservations(ctx,
			filepath.Join(cfg.Output.ProcessedData, fmt.Sprintf("volunteer_%s.csv", suffix)))
		if err != nil {
			return err
		}
		professionals, err := ingest.ReadObservations(ctx,
			filepath.Join(cfg.Output.ProcessedData, fmt.Sprintf("professional_%s.csv", suffix)))
		if err != nil {
			return err
		}

		pairs, err := triangulate.MatchParallel(ctx, volunteers, professionals, triangulate.MatchConfig{
			MaxDistanceMeters:   maxDistance,
			MaxTimeHours:        maxTime,
			MinConcentrationMgL: minConc,
			Strategy:            strategy,
		}, cfg.Matching.Workers)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Output.Results, 0o755); err != nil {
			return eris.Wrap(err, "create results dir")
		}
		outPath := filepath.Join(cfg.Output.Results, report.PairsCSVName)
		if err := report.WritePairsCSV(outPath, pairs); err != nil {
			return err
		}

		zap.L().Info("match complete",
			zap.Int("volunteers", len(volunteers)),
			zap.Int("professionals", len(professionals)),
			zap.Int("pairs", len(pairs)),
			zap.String("output", outPath),
		)
		return nil
	},
}

func init() {
	matchCmd.Flags().Float64Var(&matchMaxDistance, "max-distance", 0, "max pair distance in meters (default from config)")
	matchCmd.Flags().Float64Var(&matchMaxTime, "max-time", 0, "max pair time difference in hours (default from config)")
	matchCmd.Flags().Float64Var(&matchMinConc, "min-concentration", 0, "professional concentration gate in mg/L (default from config)")
	matchCmd.Flags().StringVar(&matchStrategy, "strategy", "", "matching strategy: all or nearest (default from config)")
	rootCmd.AddCommand(matchCmd)
}
