package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blue-thumb/triangulate/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "triangulate",
	Short: "Virtual triangulation for volunteer water-quality data",
	Long:  "Validates volunteer stream measurements against professional agency data by matching observations in space and time and regressing the paired concentrations.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
