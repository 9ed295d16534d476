package cmd

import (
	"context"
	"fmt"

	"andino-loader/core/config"
	"andino-loader/core/database"
	"andino-loader/core/logger"
	"andino-loader/feature/dictionary"

	"github.com/spf13/cobra"
)

var dictionaryCmd = &cobra.Command{
	Use:   "dictionary",
	Short: "Export the database schema dictionary as CSV files",
	Long: `Dictionary renders the destination schema (columns, foreign keys,
indexes, per-table sizes) into <output>/diccionario_*.csv plus one
column sheet per table under <output>/tables/.`,
	RunE: runDictionary,
}

func init() {
	RootCmd.AddCommand(dictionaryCmd)
}

func runDictionary(cmd *cobra.Command, args []string) error {
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

	svc := dictionary.NewService(db, cfg.Import.OutputDir, l)
	if err := svc.Export(context.Background()); err != nil {
		return fmt.Errorf("dictionary export failed: %w", err)
	}
	return nil
}
