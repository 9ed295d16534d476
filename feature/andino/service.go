package andino

import (
	"context"
	"fmt"

	"andino-loader/core/importer"
	"andino-loader/feature/ingest"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service drives a full import run.
type Service struct {
	db        *gorm.DB
	source    *ingest.Source
	exporter  *Exporter
	logger    *zap.Logger
	batchSize int
}

// NewService creates the run orchestrator.
func NewService(db *gorm.DB, source *ingest.Source, exporter *Exporter, logger *zap.Logger, batchSize int) *Service {
	return &Service{
		db:        db,
		source:    source,
		exporter:  exporter,
		logger:    logger,
		batchSize: batchSize,
	}
}

// TableResult is one table's outcome within a run. Error holds the
// table-level fault that aborted the table's phase, if any; row-level
// failures are counted in Outcome.Invalid instead.
type TableResult struct {
	Table   string           `json:"table"`
	Outcome importer.Outcome `json:"outcome"`
	Error   string           `json:"error,omitempty"`
}

// RunSummary is the full run report.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Tables       []TableResult `json:"tables"`
	SweptStaging []string      `json:"swept_staging,omitempty"`
}

// Run executes one import: sweep orphaned staging tables, load masters,
// merge reservations, load dependents. Each table commits independently;
// a table-level fault skips that table and the run continues, except for
// a reservation source missing its key columns, which aborts the run.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))
	log.Info("import run starting")

	engine := importer.New(log)
	summary := &RunSummary{RunID: runID}

	swept, err := engine.SweepOrphans(ctx, s.db)
	if err != nil {
		// Leftover staging tables waste space but do not block a load.
		log.Warn("orphan staging sweep failed", zap.Error(err))
	}
	summary.SweptStaging = swept

	for _, spec := range MasterLoads() {
		s.loadTable(ctx, engine, spec, runID, summary, log)
	}

	if err := s.mergeReservas(ctx, engine, runID, summary, log); err != nil {
		return summary, err
	}

	for _, spec := range DependentLoads() {
		s.loadTable(ctx, engine, spec, runID, summary, log)
	}

	log.Info("import run finished", zap.Int("tables", len(summary.Tables)))
	return summary, nil
}

// loadTable reads one table's batch and loads it in its own transaction.
// Table-level faults are recorded in the summary and the run moves on;
// earlier tables' committed outcomes are unaffected.
func (s *Service) loadTable(ctx context.Context, engine *importer.Engine, spec importer.LoadSpec, runID string, summary *RunSummary, log *zap.Logger) {
	result := TableResult{Table: spec.Table}

	recs, err := s.source.ReadTable(spec.Table)
	if err != nil {
		result.Error = err.Error()
		log.Error("source read failed, skipping table",
			zap.String("table", spec.Table), zap.Error(err))
		summary.Tables = append(summary.Tables, result)
		return
	}
	if len(recs) == 0 {
		summary.Tables = append(summary.Tables, result)
		return
	}

	var rejected []importer.Rejected
	err = s.db.Transaction(func(tx *gorm.DB) error {
		out, rej, err := engine.Load(ctx, tx, spec, recs)
		if err != nil {
			return err
		}
		result.Outcome = out
		rejected = rej
		return nil
	})
	if err != nil {
		result.Error = err.Error()
		log.Error("table load aborted",
			zap.String("table", spec.Table), zap.Error(err))
		summary.Tables = append(summary.Tables, result)
		return
	}

	if _, err := s.exporter.ExportRejected(ctx, runID, spec.Table, rejected); err != nil {
		log.Error("failed to export rejected rows",
			zap.String("table", spec.Table), zap.Error(err))
	}

	log.Info("table loaded",
		zap.String("table", spec.Table),
		zap.Int("inserted", result.Outcome.Inserted),
		zap.Int("updated", result.Outcome.Updated),
		zap.Int("skipped", result.Outcome.Skipped),
		zap.Int("invalid", result.Outcome.Invalid),
	)
	summary.Tables = append(summary.Tables, result)
}

// mergeReservas runs the staged reservation merge: dedupe on the natural
// key, partition by reference resolvability, bulk-stage outside the
// transaction, merge inside one, drop the staging table regardless. A
// merge fault is fatal for the merge only: it is recorded in the summary
// and the dependent loads still run. The one returned error is the
// missing-required-column abort, because dependents key off reservations
// and loading them against a source this malformed would mass-quarantine
// misleadingly.
func (s *Service) mergeReservas(ctx context.Context, engine *importer.Engine, runID string, summary *RunSummary, log *zap.Logger) error {
	spec := ReservaMerge()
	result := TableResult{Table: spec.Table}

	recs, err := s.source.ReadTable(spec.Table)
	if err != nil {
		result.Error = err.Error()
		log.Error("reservation source read failed, skipping merge", zap.Error(err))
		summary.Tables = append(summary.Tables, result)
		return nil
	}
	if len(recs) == 0 {
		log.Info("no reservation data in source")
		summary.Tables = append(summary.Tables, result)
		return nil
	}

	for _, col := range reservaRequiredColumns {
		if !recs[0].Has(col) {
			result.Error = fmt.Sprintf("reservation source missing required column %s", col)
			summary.Tables = append(summary.Tables, result)
			return fmt.Errorf("reservation source missing required column %s", col)
		}
	}

	before := len(recs)
	recs = importer.DedupeNaturalKey(spec, recs)
	if dropped := before - len(recs); dropped > 0 {
		log.Info("duplicate natural keys collapsed",
			zap.String("table", spec.Table),
			zap.Int("dropped", dropped),
		)
	}

	valid, rejected, err := engine.FilterResolvable(ctx, s.db, spec, recs)
	if err != nil {
		result.Error = err.Error()
		log.Error("reservation merge aborted", zap.Error(err))
		summary.Tables = append(summary.Tables, result)
		return nil
	}
	result.Outcome.Invalid = len(rejected)
	if _, err := s.exporter.ExportRejected(ctx, runID, spec.Table, rejected); err != nil {
		log.Error("failed to export rejected reservations", zap.Error(err))
	}
	if len(valid) == 0 {
		summary.Tables = append(summary.Tables, result)
		return nil
	}

	staging, err := engine.Stage(ctx, s.db, spec, valid, s.batchSize)
	if err != nil {
		engine.DropStaging(ctx, s.db, staging)
		result.Error = err.Error()
		log.Error("reservation staging failed, skipping merge", zap.Error(err))
		summary.Tables = append(summary.Tables, result)
		return nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		inserted, updated, err := engine.MergeStaged(ctx, tx, spec, staging)
		if err != nil {
			return err
		}
		result.Outcome.Inserted = int(inserted)
		result.Outcome.Updated = int(updated)
		return nil
	})
	engine.DropStaging(ctx, s.db, staging)
	if err != nil {
		result.Error = err.Error()
		log.Error("reservation merge failed", zap.Error(err))
		summary.Tables = append(summary.Tables, result)
		return nil
	}

	summary.Tables = append(summary.Tables, result)
	return nil
}
