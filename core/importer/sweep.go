package importer

import (
	"context"
	"regexp"

	"andino-loader/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var stagingNamePattern = regexp.MustCompile(`_staging_[0-9a-f]{8}$`)

// SweepOrphans drops staging tables left behind by crashed runs. Matching
// is by naming convention; a table that merely resembles the pattern would
// be dropped too, so nothing else in the schema may use the suffix. The
// returned names are what was actually dropped.
func (e *Engine) SweepOrphans(ctx context.Context, db *gorm.DB) ([]string, error) {
	db = db.WithContext(ctx)

	tables, err := database.ListTables(db)
	if err != nil {
		return nil, err
	}

	var dropped []string
	for _, table := range tables {
		if !stagingNamePattern.MatchString(table) {
			continue
		}
		if err := db.Exec("DROP TABLE IF EXISTS " + table).Error; err != nil {
			e.log.Warn("failed to drop orphan staging table",
				zap.String("table", table),
				zap.Error(err),
			)
			continue
		}
		e.log.Info("dropped orphan staging table", zap.String("table", table))
		dropped = append(dropped, table)
	}
	return dropped, nil
}
