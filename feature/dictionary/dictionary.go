package dictionary

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"andino-loader/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service renders the schema dictionary to an output directory.
type Service struct {
	db        *gorm.DB
	outputDir string
	logger    *zap.Logger
}

// NewService creates a dictionary exporter.
func NewService(db *gorm.DB, outputDir string, logger *zap.Logger) *Service {
	return &Service{db: db, outputDir: outputDir, logger: logger}
}

// Export writes the dictionary files. Index metadata is best effort: some
// deployments revoke STATISTICS access, and the dictionary is still
// useful without it.
func (s *Service) Export(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	tablesDir := filepath.Join(s.outputDir, "tables")
	if err := os.MkdirAll(tablesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables, err := database.ListTables(db)
	if err != nil {
		return err
	}

	columnRows := [][]string{{"tabla", "columna", "tipo", "null", "key", "default", "extra"}}
	fkRows := [][]string{{"tabla", "columna", "referencia_tabla", "referencia_columna"}}
	summaryRows := [][]string{{"tabla", "filas_aprox"}}

	for _, table := range tables {
		cols, err := database.GetTableColumns(db, table)
		if err != nil {
			return err
		}
		perTable := [][]string{columnRows[0]}
		for _, c := range cols {
			def := ""
			if c.Default != nil {
				def = *c.Default
			}
			row := []string{table, c.Field, c.Type, c.Null, c.Key, def, c.Extra}
			columnRows = append(columnRows, row)
			perTable = append(perTable, row)
		}
		if err := writeCSV(filepath.Join(tablesDir, table+".csv"), perTable); err != nil {
			return err
		}

		fks, err := database.GetForeignKeys(db, table)
		if err != nil {
			return err
		}
		for _, fk := range fks {
			fkRows = append(fkRows, []string{table, fk.Column, fk.ReferencedTable, fk.ReferencedColumn})
		}

		var count int64
		if err := db.Table(table).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count rows of %s: %w", table, err)
		}
		summaryRows = append(summaryRows, []string{table, strconv.FormatInt(count, 10)})
	}

	files := map[string][][]string{
		"diccionario_columnas.csv": columnRows,
		"diccionario_fks.csv":      fkRows,
		"diccionario_tablas.csv":   summaryRows,
	}
	if indexRows, err := s.indexRows(db, tables); err != nil {
		s.logger.Warn("index metadata unavailable, skipping", zap.Error(err))
	} else {
		files["diccionario_indices.csv"] = indexRows
	}

	for name, rows := range files {
		if err := writeCSV(filepath.Join(s.outputDir, name), rows); err != nil {
			return err
		}
	}

	s.logger.Info("data dictionary exported",
		zap.String("output", s.outputDir),
		zap.Int("tables", len(tables)),
	)
	return nil
}

// indexRows gathers index metadata, dialect-specific in the same way the
// schema inspector is.
func (s *Service) indexRows(db *gorm.DB, tables []string) ([][]string, error) {
	rows := [][]string{{"tabla", "indice", "unico", "seq", "columna"}}

	if db.Dialector.Name() == "sqlite" {
		for _, table := range tables {
			type indexEntry struct {
				Seq     int
				Name    string
				Unique  int
				Origin  string
				Partial int
			}
			var indexes []indexEntry
			if err := db.Raw(fmt.Sprintf("PRAGMA index_list('%s')", table)).Scan(&indexes).Error; err != nil {
				return nil, err
			}
			for _, idx := range indexes {
				type indexColumn struct {
					Seqno int
					Cid   int
					Name  string
				}
				var cols []indexColumn
				if err := db.Raw(fmt.Sprintf("PRAGMA index_info('%s')", idx.Name)).Scan(&cols).Error; err != nil {
					return nil, err
				}
				unique := "0"
				if idx.Unique == 1 {
					unique = "1"
				}
				for _, c := range cols {
					rows = append(rows, []string{table, idx.Name, unique, strconv.Itoa(c.Seqno + 1), c.Name})
				}
			}
		}
		return rows, nil
	}

	type statRow struct {
		TableName  string `gorm:"column:table_name"`
		IndexName  string `gorm:"column:index_name"`
		NonUnique  int    `gorm:"column:non_unique"`
		SeqInIndex int    `gorm:"column:seq_in_index"`
		ColumnName string `gorm:"column:column_name"`
	}
	var stats []statRow
	err := db.Raw(`
		SELECT s.TABLE_NAME AS table_name,
		       s.INDEX_NAME AS index_name,
		       s.NON_UNIQUE AS non_unique,
		       s.SEQ_IN_INDEX AS seq_in_index,
		       s.COLUMN_NAME AS column_name
		FROM INFORMATION_SCHEMA.STATISTICS s
		WHERE s.TABLE_SCHEMA = DATABASE()
		ORDER BY s.TABLE_NAME, s.INDEX_NAME, s.SEQ_IN_INDEX`).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	for _, st := range stats {
		unique := "1"
		if st.NonUnique == 1 {
			unique = "0"
		}
		rows = append(rows, []string{st.TableName, st.IndexName, unique, strconv.Itoa(st.SeqInIndex), st.ColumnName})
	}
	return rows, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
