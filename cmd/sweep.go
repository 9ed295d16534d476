package cmd

import (
	"context"
	"fmt"

	"andino-loader/core/config"
	"andino-loader/core/database"
	"andino-loader/core/importer"
	"andino-loader/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Drop staging tables left behind by crashed runs",
	Long: `Sweep removes orphaned <tabla>_staging_<sufijo> tables. The import
command sweeps automatically before loading; this runs the same cleanup
standalone.`,
	RunE: runSweep,
}

func init() {
	RootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	engine := importer.New(l)
	dropped, err := engine.SweepOrphans(context.Background(), db)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	l.Info("sweep finished", zap.Strings("dropped", dropped))
	return nil
}
