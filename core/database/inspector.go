package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// ForeignKeyInfo describes one declared foreign-key constraint column.
type ForeignKeyInfo struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Candidate timestamp column names, checked in order. The schema mixes
// Spanish and English conventions depending on who created the table.
var (
	createdCandidates = []string{"creado_en", "created_at", "created_on", "fecha_creacion"}
	updatedCandidates = []string{"actualizado_en", "updated_at", "updated_on", "fecha_modificacion"}
)

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		// SQLite uses PRAGMA table_info
		type SQLiteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []SQLiteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			key := ""
			if col.Pk > 0 {
				key = "PRI"
			}
			columns = append(columns, ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
				Key:   key,
			})
		}
		return columns, nil
	}

	// Raw "SHOW COLUMNS" keeps the exact MySQL type strings.
	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	// Normalize to lowercase
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// GetForeignKeys retrieves the declared foreign-key constraints of a table.
// The import engine takes caller-declared constraints; this is used by the
// dictionary export and by the sweep command's sanity logging.
func GetForeignKeys(db *gorm.DB, tableName string) ([]ForeignKeyInfo, error) {
	if db.Dialector.Name() == "sqlite" {
		type sqliteFK struct {
			ID    int    `gorm:"column:id"`
			Seq   int    `gorm:"column:seq"`
			Table string `gorm:"column:table"`
			From  string `gorm:"column:from"`
			To    string `gorm:"column:to"`
		}
		var rows []sqliteFK
		if err := db.Raw(fmt.Sprintf("PRAGMA foreign_key_list('%s')", tableName)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", tableName, err)
		}
		fks := make([]ForeignKeyInfo, 0, len(rows))
		for _, r := range rows {
			fks = append(fks, ForeignKeyInfo{
				Column:           strings.ToLower(r.From),
				ReferencedTable:  strings.ToLower(r.Table),
				ReferencedColumn: strings.ToLower(r.To),
			})
		}
		return fks, nil
	}

	// COLUMN is reserved in MySQL, so the select aliases it away.
	type mysqlFK struct {
		FKColumn         string `gorm:"column:fk_column"`
		ReferencedTable  string `gorm:"column:referenced_table"`
		ReferencedColumn string `gorm:"column:referenced_column"`
	}
	var rows []mysqlFK
	err := db.Raw(`
		SELECT kcu.COLUMN_NAME AS fk_column,
		       kcu.REFERENCED_TABLE_NAME AS referenced_table,
		       kcu.REFERENCED_COLUMN_NAME AS referenced_column
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		WHERE kcu.TABLE_SCHEMA = DATABASE()
		  AND kcu.TABLE_NAME = ?
		  AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.COLUMN_NAME`, tableName).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", tableName, err)
	}
	fks := make([]ForeignKeyInfo, 0, len(rows))
	for _, r := range rows {
		fks = append(fks, ForeignKeyInfo{
			Column:           strings.ToLower(r.FKColumn),
			ReferencedTable:  strings.ToLower(r.ReferencedTable),
			ReferencedColumn: strings.ToLower(r.ReferencedColumn),
		})
	}
	return fks, nil
}

// DetectTimestampColumns returns the created/updated audit column names of
// the table, if any column matches the recognized name variants. Either
// result may be empty.
func DetectTimestampColumns(db *gorm.DB, tableName string) (created string, updated string, err error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return "", "", err
	}
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c.Field] = struct{}{}
	}
	for _, c := range createdCandidates {
		if _, ok := have[c]; ok {
			created = c
			break
		}
	}
	for _, c := range updatedCandidates {
		if _, ok := have[c]; ok {
			updated = c
			break
		}
	}
	return created, updated, nil
}

// ListTables returns the table names of the current schema.
func ListTables(db *gorm.DB) ([]string, error) {
	var tables []string
	var err error
	if db.Dialector.Name() == "sqlite" {
		err = db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").Scan(&tables).Error
	} else {
		err = db.Raw("SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME").Scan(&tables).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}
