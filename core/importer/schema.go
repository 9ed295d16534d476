package importer

import (
	"fmt"
	"strings"

	"andino-loader/core/database"
	"andino-loader/core/record"

	"gorm.io/gorm"
)

// SchemaCache caches destination column metadata for the lifetime of one
// run. The first lookup per table hits the store; later lookups are
// in-memory. A fetch failure is fatal for that table's phase and is
// surfaced, never cached.
type SchemaCache struct {
	tables map[string]map[string]database.ColumnInfo
}

// NewSchemaCache returns an empty cache.
func NewSchemaCache() *SchemaCache {
	return &SchemaCache{tables: make(map[string]map[string]database.ColumnInfo)}
}

// Columns returns the column metadata of the table, keyed by lowercase
// column name, fetching it on first use.
func (c *SchemaCache) Columns(db *gorm.DB, table string) (map[string]database.ColumnInfo, error) {
	if cols, ok := c.tables[table]; ok {
		return cols, nil
	}
	infos, err := database.GetTableColumns(db, table)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("table %s has no columns or does not exist", table)
	}
	cols := make(map[string]database.ColumnInfo, len(infos))
	for _, info := range infos {
		cols[info.Field] = info
	}
	c.tables[table] = cols
	return cols, nil
}

// Project drops every record field that is not a known column of the
// table. Unknown fields are caller noise (extra source columns), not an
// error.
func (c *SchemaCache) Project(db *gorm.DB, table string, rec *record.Record) error {
	cols, err := c.Columns(db, table)
	if err != nil {
		return err
	}
	for _, field := range rec.Fields() {
		if _, ok := cols[strings.ToLower(field)]; !ok {
			rec.Delete(field)
		}
	}
	return nil
}

// Seed pre-populates the cache for a table, bypassing the store.
// Intended for tests.
func (c *SchemaCache) Seed(table string, infos []database.ColumnInfo) {
	cols := make(map[string]database.ColumnInfo, len(infos))
	for _, info := range infos {
		cols[info.Field] = info
	}
	c.tables[table] = cols
}

// isBoolColumn reports whether the column's declared type holds a boolean.
// MySQL models booleans as tinyint(1); sqlite schemas spell them out.
func isBoolColumn(info database.ColumnInfo) bool {
	switch info.Type {
	case "tinyint(1)", "bool", "boolean", "bit(1)":
		return true
	}
	return false
}
