package importer

import (
	"context"
	"strings"

	"andino-loader/core/convert"
	"andino-loader/core/database"
	"andino-loader/core/record"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine carries the per-run caches and logger. Construct a fresh Engine
// per import run; the schema cache and resolver are not safe to reuse
// across runs against a mutated store.
type Engine struct {
	Schemas  *SchemaCache
	Resolver *Resolver

	log *zap.Logger
}

// New returns an Engine with empty caches.
func New(log *zap.Logger) *Engine {
	return &Engine{
		Schemas:  NewSchemaCache(),
		Resolver: NewResolver(),
		log:      log,
	}
}

// Load runs the row classifier over a batch: coerce, project, validate
// foreign keys, then insert, update or skip each record against the
// destination, continuing past row-level failures. It returns the outcome
// counters and the quarantined rows.
//
// The error return is table-level only (schema fetch or id-set preload
// failure); when it is non-nil the phase must be aborted and no counters
// are meaningful.
func (e *Engine) Load(ctx context.Context, db *gorm.DB, spec LoadSpec, recs []*record.Record) (Outcome, []Rejected, error) {
	db = db.WithContext(ctx)

	cols, err := e.Schemas.Columns(db, spec.Table)
	if err != nil {
		return Outcome{}, nil, err
	}

	var out Outcome
	var quarantine []Rejected

	for _, rec := range recs {
		coerceRow(cols, spec.ForeignKeys, rec)
		if err := e.Schemas.Project(db, spec.Table, rec); err != nil {
			return Outcome{}, nil, err
		}

		rej, fatal := e.checkForeignKeys(db, spec, rec)
		if fatal != nil {
			return Outcome{}, nil, fatal
		}
		if rej != nil {
			quarantine = append(quarantine, *rej)
			out.Invalid++
			continue
		}

		e.executeRow(db, spec, rec, &out, &quarantine)
	}

	return out, quarantine, nil
}

// coerceRow rewrites the surrogate id and foreign-key columns to integers
// and boolean-typed columns to booleans, in place. Unparseable ids become
// null; a value that does not look like a boolean is left untouched.
func coerceRow(cols map[string]database.ColumnInfo, fks []ForeignKey, rec *record.Record) {
	intCols := map[string]struct{}{"id": {}}
	for _, fk := range fks {
		intCols[fk.Column] = struct{}{}
	}
	for col := range intCols {
		if v, ok := rec.Get(col); ok {
			if n := convert.ToIntSafe(v); n != nil {
				rec.Set(col, *n)
			} else {
				rec.Set(col, nil)
			}
		}
	}
	for _, field := range rec.Fields() {
		if _, isInt := intCols[field]; isInt {
			continue
		}
		info, ok := cols[strings.ToLower(field)]
		if !ok || !isBoolColumn(info) {
			continue
		}
		v, _ := rec.Get(field)
		if b := convert.ToBoolSafe(v); b != nil {
			rec.Set(field, *b)
		}
	}
}

// checkForeignKeys validates the declared constraints in order, short
// circuiting on the first required failure. Optional constraints that do
// not resolve null the column out instead.
func (e *Engine) checkForeignKeys(db *gorm.DB, spec LoadSpec, rec *record.Record) (*Rejected, error) {
	for _, fk := range spec.ForeignKeys {
		v, present := rec.Get(fk.Column)
		if !present || v == nil {
			if fk.Optional {
				continue
			}
			return &Rejected{Record: rec, Kind: FailMissingColumn, Column: fk.Column}, nil
		}
		id, ok := v.(int64)
		if !ok {
			if fk.Optional {
				rec.Set(fk.Column, nil)
				continue
			}
			return &Rejected{Record: rec, Kind: FailMissingColumn, Column: fk.Column}, nil
		}
		resolved, err := e.Resolver.Resolves(db, fk.References, &id)
		if err != nil {
			return nil, err
		}
		if !resolved {
			if fk.Optional {
				e.log.Warn("optional reference not found, clearing column",
					zap.String("table", spec.Table),
					zap.String("column", fk.Column),
					zap.Int64("id", id),
				)
				rec.Set(fk.Column, nil)
				continue
			}
			return &Rejected{Record: rec, Kind: FailForeignKey, Column: fk.Column}, nil
		}
	}
	return nil, nil
}

// executeRow performs the insert/update/skip decision for one validated,
// projected record. Store failures quarantine the row and processing
// continues; they never abort the batch.
func (e *Engine) executeRow(db *gorm.DB, spec LoadSpec, rec *record.Record, out *Outcome, quarantine *[]Rejected) {
	var id *int64
	if v, ok := rec.Get("id"); ok {
		if n, isInt := v.(int64); isInt {
			id = &n
		}
	}

	var exists bool
	if id != nil {
		var err error
		exists, err = destHasID(db, spec.Table, *id)
		if err != nil {
			e.quarantineWrite(spec.Table, rec, err, out, quarantine)
			return
		}
	}

	if spec.Mode == ModeUpsert && id != nil && exists {
		updates := rec.Values()
		delete(updates, "id")
		if len(updates) == 0 {
			out.skip(SkipNoColumns)
			return
		}
		res := db.Table(spec.Table).Where("id = ?", *id).Updates(updates)
		if res.Error != nil {
			e.quarantineWrite(spec.Table, rec, res.Error, out, quarantine)
			return
		}
		out.Updated++
		return
	}

	if id != nil && exists {
		// Insert-only path hitting an existing id: idempotent no-op.
		out.skip(SkipExistingID)
		return
	}

	values := rec.Values()
	if len(values) == 0 {
		out.skip(SkipNoColumns)
		return
	}
	if err := db.Table(spec.Table).Create(values).Error; err != nil {
		e.quarantineWrite(spec.Table, rec, err, out, quarantine)
		return
	}
	out.Inserted++
}

func (e *Engine) quarantineWrite(table string, rec *record.Record, err error, out *Outcome, quarantine *[]Rejected) {
	e.log.Warn("row write failed, quarantining",
		zap.String("table", table),
		zap.Any("row", rec.Values()),
		zap.Error(err),
	)
	*quarantine = append(*quarantine, Rejected{Record: rec, Kind: FailWrite, Err: err})
	out.Invalid++
}

// destHasID checks whether the destination already holds a row with the
// given surrogate id. One point query; callers only reach this when the
// record actually carries an id.
func destHasID(db *gorm.DB, table string, id int64) (bool, error) {
	var count int64
	if err := db.Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
