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
)

var (
	cleanResultsPath  string
	cleanStationsPath string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Merge and clean downloaded portal exports",
	Long:  "Joins station coordinates onto result rows, filters invalid records, and splits the data into volunteer and professional observation files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		resultsPath := cleanResultsPath
		stationsPath := cleanStationsPath
		var err error
		if resultsPath == "" {
			if resultsPath, err = findExport(cfg.Output.RawData, "result"); err != nil {
				return err
			}
		}
		if stationsPath == "" {
			if stationsPath, err = findExport(cfg.Output.RawData, "station"); err != nil {
				return err
			}
		}

		if err := os.MkdirAll(cfg.Output.ProcessedData, 0o755); err != nil {
			return eris.Wrap(err, "create processed data dir")
		}

		mergedPath := filepath.Join(cfg.Output.ProcessedData, "merged_results.csv")
		merged, err := ingest.MergeStationCoords(ctx, resultsPath, stationsPath, mergedPath)
		if err != nil {
			return err
		}

		volunteers, professionals, stats, err := ingest.CleanFile(ctx, mergedPath, ingest.CleanOptions{
			Characteristic:      cfg.DataSources.Characteristic,
			VolunteerOrgs:       cfg.Organizations.Volunteer,
			ProfessionalOrgs:    cfg.Organizations.Professional,
			MinConcentrationMgL: cfg.Matching.MinConcentrationMgL,
		})
		if err != nil {
			return err
		}

		suffix := strings.ToLower(cfg.DataSources.Characteristic)
		volPath := filepath.Join(cfg.Output.ProcessedData, fmt.Sprintf("volunteer_%s.csv", suffix))
		proPath := filepath.Join(cfg.Output.ProcessedData, fmt.Sprintf("professional_%s.csv", suffix))
		if err := ingest.WriteObservations(volPath, volunteers); err != nil {
			return err
		}
		if err := ingest.WriteObservations(proPath, professionals); err != nil {
			return err
		}

		zap.L().Info("clean complete",
			zap.Int("merged_rows", merged),
			zap.Int("total", stats.Total),
			zap.Int("volunteers", stats.Volunteers),
			zap.Int("professionals", stats.Professionals),
			zap.String("volunteer_file", volPath),
			zap.String("professional_file", proPath),
		)
		return nil
	},
}

// findExport locates the extracted portal CSV in dir whose name contains
// keyword.
func findExport(dir, keyword string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "read raw data dir %s", dir)
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if strings.Contains(name, keyword) && strings.HasSuffix(name, ".csv") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s export found in %s, run fetch first", keyword, dir)
}

func init() {
	cleanCmd.Flags().StringVar(&cleanResultsPath, "results", "", "path to the Result export CSV (default: auto-detect)")
	cleanCmd.Flags().StringVar(&cleanStationsPath, "stations", "", "path to the Station export CSV (default: auto-detect)")
	rootCmd.AddCommand(cleanCmd)
}
