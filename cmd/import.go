package cmd

import (
	"context"
	"fmt"

	"andino-loader/core/config"
	"andino-loader/core/database"
	"andino-loader/core/logger"
	"andino-loader/core/storage"
	"andino-loader/feature/andino"
	"andino-loader/feature/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importDataDir string
	importUpload  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run a full import of the CSV exports into the database",
	Long: `Import loads the per-table CSV exports in dependency order:
master tables first (insert-only), then the staged reservation merge
keyed on (pnr, vuelo_id), then the dependent tables. Rows failing a
declared foreign key are exported to <output>/<tabla>_invalidas.csv
and the run continues.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDataDir, "data-dir", "", "Override the source data directory")
	importCmd.Flags().BoolVar(&importUpload, "upload", false, "Upload quarantine exports to object storage")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if importDataDir != "" {
		cfg.Import.DataDir = importDataDir
	}
	if importUpload {
		cfg.Import.Upload = true
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	var client storage.Client
	if cfg.Import.Upload {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	source := ingest.NewSource(cfg.Import.DataDir, l)
	exporter := andino.NewExporter(cfg.Import.OutputDir, client, cfg.Storage.Bucket, cfg.Import.Upload, l)
	svc := andino.NewService(db, source, exporter, l, cfg.Import.BatchSize)

	summary, err := svc.Run(ctx)
	if summary != nil {
		printRunSummary(l, summary)
	}
	if err != nil {
		return fmt.Errorf("import run failed: %w", err)
	}
	return nil
}

func printRunSummary(l *zap.Logger, summary *andino.RunSummary) {
	for _, tr := range summary.Tables {
		fields := []zap.Field{
			zap.String("table", tr.Table),
			zap.Int("inserted", tr.Outcome.Inserted),
			zap.Int("updated", tr.Outcome.Updated),
			zap.Int("skipped", tr.Outcome.Skipped),
			zap.Int("invalid", tr.Outcome.Invalid),
		}
		if tr.Error != "" {
			fields = append(fields, zap.String("error", tr.Error))
			l.Warn("table summary", fields...)
			continue
		}
		l.Info("table summary", fields...)
	}
}
