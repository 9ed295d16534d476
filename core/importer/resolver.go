package importer

import (
	"fmt"

	"gorm.io/gorm"
)

// Resolver answers foreign-key membership queries against a per-run cache
// of referenced-table id sets. The first query against a table loads its
// full id set in one statement; every later query is an in-memory lookup.
//
// The cache is monotonically additive: once loaded, a table's set is never
// invalidated, even if this process later writes to that table. Callers
// must sequence loads so a table is complete before dependents reference
// it.
type Resolver struct {
	sets map[string]map[int64]struct{}
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{sets: make(map[string]map[int64]struct{})}
}

// Resolves reports whether id exists in the referenced table. A nil id
// never resolves. The bulk preload error, if any, is surfaced: it is a
// table-level fault, not a row-level one.
func (r *Resolver) Resolves(db *gorm.DB, table string, id *int64) (bool, error) {
	if id == nil {
		return false, nil
	}
	set, err := r.idSet(db, table)
	if err != nil {
		return false, err
	}
	_, ok := set[*id]
	return ok, nil
}

func (r *Resolver) idSet(db *gorm.DB, table string) (map[int64]struct{}, error) {
	if set, ok := r.sets[table]; ok {
		return set, nil
	}
	var ids []int64
	if err := db.Table(table).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load id set of %s: %w", table, err)
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	r.sets[table] = set
	return set, nil
}

// Seed pre-populates the id set of a table, bypassing the store.
// Intended for tests.
func (r *Resolver) Seed(table string, ids ...int64) {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	r.sets[table] = set
}
