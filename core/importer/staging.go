package importer

import (
	"context"
	"fmt"
	"strings"

	"andino-loader/core/convert"
	"andino-loader/core/database"
	"andino-loader/core/record"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// naturalKeySep joins key parts into a map key; 0x1f never appears in
// locator codes or numeric ids.
const naturalKeySep = "\x1f"

// CoerceReferenceColumns rewrites the declared foreign-key columns to
// typed integers in place; unparseable values become nil. Key comparison
// and resolution must both see the typed form, so this runs before any
// natural-key grouping.
func CoerceReferenceColumns(spec MergeSpec, recs []*record.Record) {
	for _, rec := range recs {
		for _, fk := range spec.ForeignKeys {
			if v, ok := rec.Get(fk.Column); ok {
				if n := convert.ToIntSafe(v); n != nil {
					rec.Set(fk.Column, *n)
				} else {
					rec.Set(fk.Column, nil)
				}
			}
		}
	}
}

// DedupeNaturalKey collapses the batch so each natural key appears once,
// last occurrence winning. Earlier duplicates are dropped silently; that
// is load policy, not a detected error. Reference columns are coerced
// first: "5" and "5.0" are the same flight, not two keys.
func DedupeNaturalKey(spec MergeSpec, recs []*record.Record) []*record.Record {
	CoerceReferenceColumns(spec, recs)
	index := make(map[string]int, len(recs))
	out := make([]*record.Record, 0, len(recs))
	for _, rec := range recs {
		key := naturalKeyOf(spec, rec)
		if i, seen := index[key]; seen {
			out[i] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}

func naturalKeyOf(spec MergeSpec, rec *record.Record) string {
	parts := make([]string, 0, len(spec.NaturalKey))
	for _, col := range spec.NaturalKey {
		v, _ := rec.Get(col)
		parts = append(parts, convert.ToString(v))
	}
	return strings.Join(parts, naturalKeySep)
}

// FilterResolvable coerces the declared foreign-key columns and partitions
// the batch into rows whose references all resolve and rows that do not.
// Non-resolving rows are reported as rejected for the caller to export.
// The error return is the resolver's bulk-preload failure, fatal for the
// merge.
func (e *Engine) FilterResolvable(ctx context.Context, db *gorm.DB, spec MergeSpec, recs []*record.Record) ([]*record.Record, []Rejected, error) {
	db = db.WithContext(ctx)
	CoerceReferenceColumns(spec, recs)

	valid := make([]*record.Record, 0, len(recs))
	var rejected []Rejected

	for _, rec := range recs {
		var rej *Rejected
		for _, fk := range spec.ForeignKeys {
			v, present := rec.Get(fk.Column)
			if !present || v == nil {
				rej = &Rejected{Record: rec, Kind: FailMissingColumn, Column: fk.Column}
				break
			}
			id, ok := v.(int64)
			if !ok {
				rej = &Rejected{Record: rec, Kind: FailMissingColumn, Column: fk.Column}
				break
			}
			resolved, err := e.Resolver.Resolves(db, fk.References, &id)
			if err != nil {
				return nil, nil, err
			}
			if !resolved {
				rej = &Rejected{Record: rec, Kind: FailForeignKey, Column: fk.Column}
				break
			}
		}
		if rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		valid = append(valid, rec)
	}

	return valid, rejected, nil
}

// Stage creates the ephemeral staging table and bulk-loads the batch into
// it. The staging load runs on the plain connection, outside the caller's
// merge transaction, so a later merge failure does not also discard the
// load. The cost is that a crash between here and DropStaging leaks the
// table; SweepOrphans reclaims those on the next run.
func (e *Engine) Stage(ctx context.Context, db *gorm.DB, spec MergeSpec, recs []*record.Record, batchSize int) (string, error) {
	db = db.WithContext(ctx)

	cols, err := e.Schemas.Columns(db, spec.Table)
	if err != nil {
		return "", err
	}
	stageCols := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		if _, ok := cols[col]; ok {
			stageCols = append(stageCols, col)
		}
	}
	for _, key := range spec.NaturalKey {
		if _, ok := cols[key]; !ok {
			return "", fmt.Errorf("natural key column %s missing from %s", key, spec.Table)
		}
	}

	name := fmt.Sprintf("%s_staging_%s", spec.Table, uuid.NewString()[:8])

	// An empty projection of the destination keeps column types without
	// repeating DDL here.
	create := fmt.Sprintf("CREATE TABLE %s AS SELECT %s FROM %s WHERE 1=0",
		name, strings.Join(stageCols, ", "), spec.Table)
	if err := db.Exec(create).Error; err != nil {
		return "", fmt.Errorf("failed to create staging table %s: %w", name, err)
	}

	if batchSize <= 0 {
		batchSize = 500
	}
	rows := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		row := make(map[string]any, len(stageCols))
		for _, col := range stageCols {
			v, _ := rec.Get(col)
			row[col] = v
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		if err := db.Table(name).CreateInBatches(rows, batchSize).Error; err != nil {
			return name, fmt.Errorf("failed to bulk-load staging table %s: %w", name, err)
		}
	}

	e.log.Info("staging table loaded",
		zap.String("staging", name),
		zap.Int("rows", len(rows)),
	)
	return name, nil
}

// MergeStaged runs the two set-based statements against the destination:
// one INSERT for staging rows with no natural-key match, one UPDATE
// overwriting the mutable columns of every match, last writer wins. The
// caller owns tx; both statements either commit or roll back together.
//
// Returned counts are approximate: affected-row counts are driver
// dependent and must not be treated as audit numbers.
func (e *Engine) MergeStaged(ctx context.Context, tx *gorm.DB, spec MergeSpec, staging string) (inserted, updated int64, err error) {
	tx = tx.WithContext(ctx)

	createdCol, updatedCol, err := database.DetectTimestampColumns(tx, spec.Table)
	if err != nil {
		return 0, 0, err
	}

	idCol := spec.IDColumn
	if idCol == "" {
		idCol = "id"
	}
	nowExpr := "NOW()"
	if tx.Dialector.Name() == "sqlite" {
		nowExpr = "CURRENT_TIMESTAMP"
	}

	cols, err := e.Schemas.Columns(tx, spec.Table)
	if err != nil {
		return 0, 0, err
	}
	insertCols := make([]string, 0, len(spec.Columns)+2)
	selectCols := make([]string, 0, len(spec.Columns)+2)
	for _, col := range spec.Columns {
		if _, ok := cols[col]; !ok {
			continue
		}
		insertCols = append(insertCols, col)
		selectCols = append(selectCols, "s."+col)
	}
	if createdCol != "" {
		insertCols = append(insertCols, createdCol)
		selectCols = append(selectCols, nowExpr)
	}
	if updatedCol != "" {
		insertCols = append(insertCols, updatedCol)
		selectCols = append(selectCols, nowExpr)
	}

	joinParts := make([]string, 0, len(spec.NaturalKey))
	for _, key := range spec.NaturalKey {
		joinParts = append(joinParts, fmt.Sprintf("d.%s = s.%s", key, key))
	}
	joinCond := strings.Join(joinParts, " AND ")

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s s LEFT JOIN %s d ON %s WHERE d.%s IS NULL",
		spec.Table,
		strings.Join(insertCols, ", "),
		strings.Join(selectCols, ", "),
		staging, spec.Table, joinCond, idCol,
	)
	res := tx.Exec(insertSQL)
	if res.Error != nil {
		return 0, 0, fmt.Errorf("set-based insert into %s failed: %w", spec.Table, res.Error)
	}
	inserted = res.RowsAffected

	setParts := make([]string, 0, len(spec.UpdateColumns)+1)
	if tx.Dialector.Name() == "sqlite" {
		for _, col := range spec.UpdateColumns {
			setParts = append(setParts, fmt.Sprintf("%s = s.%s", col, col))
		}
		if updatedCol != "" {
			setParts = append(setParts, fmt.Sprintf("%s = %s", updatedCol, nowExpr))
		}
		whereParts := make([]string, 0, len(spec.NaturalKey))
		for _, key := range spec.NaturalKey {
			whereParts = append(whereParts, fmt.Sprintf("%s.%s = s.%s", spec.Table, key, key))
		}
		updateSQL := fmt.Sprintf(
			"UPDATE %s SET %s FROM %s s WHERE %s",
			spec.Table,
			strings.Join(setParts, ", "),
			staging,
			strings.Join(whereParts, " AND "),
		)
		res = tx.Exec(updateSQL)
	} else {
		for _, col := range spec.UpdateColumns {
			setParts = append(setParts, fmt.Sprintf("d.%s = s.%s", col, col))
		}
		if updatedCol != "" {
			setParts = append(setParts, fmt.Sprintf("d.%s = %s", updatedCol, nowExpr))
		}
		updateSQL := fmt.Sprintf(
			"UPDATE %s d JOIN %s s ON %s SET %s",
			spec.Table, staging, joinCond,
			strings.Join(setParts, ", "),
		)
		res = tx.Exec(updateSQL)
	}
	if res.Error != nil {
		return inserted, 0, fmt.Errorf("set-based update of %s failed: %w", spec.Table, res.Error)
	}
	updated = res.RowsAffected

	e.log.Info("staged merge executed",
		zap.String("table", spec.Table),
		zap.String("staging", staging),
		zap.Int64("inserted_approx", inserted),
		zap.Int64("updated_approx", updated),
	)
	return inserted, updated, nil
}

// DropStaging disposes of the staging table. It runs unconditionally after
// a merge, success or failure; a drop failure is logged, never propagated,
// because the merge outcome is already decided.
func (e *Engine) DropStaging(ctx context.Context, db *gorm.DB, staging string) {
	if staging == "" {
		return
	}
	if err := db.WithContext(ctx).Exec("DROP TABLE IF EXISTS " + staging).Error; err != nil {
		e.log.Warn("failed to drop staging table",
			zap.String("staging", staging),
			zap.Error(err),
		)
		return
	}
	e.log.Info("staging table dropped", zap.String("staging", staging))
}
