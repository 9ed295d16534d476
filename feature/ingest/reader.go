package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"andino-loader/core/record"

	"go.uber.org/zap"
)

// headerRenames maps legacy source headers to destination column names,
// keyed by table. Headers not listed pass through lowercased.
var headerRenames = map[string]map[string]string{
	"reserva": {
		"PNR":          "pnr",
		"PasajeroID":   "pasajero_id",
		"VueloID":      "vuelo_id",
		"Asiento":      "asiento",
		"Estado":       "estado_reserva",
		"FechaReserva": "fecha_reserva",
	},
	"aeronave": {
		"capacidad": "capacidad_pasajeros",
	},
}

// Source reads table batches from a directory of CSV exports.
type Source struct {
	dir string
	log *zap.Logger
}

// NewSource returns a Source rooted at dir.
func NewSource(dir string, log *zap.Logger) *Source {
	return &Source{dir: dir, log: log}
}

// ReadTable reads <dir>/<table>.csv into records, preserving column order.
// A missing file yields an empty batch. A malformed file is an error.
func (s *Source) ReadTable(table string) ([]*record.Record, error) {
	path := filepath.Join(s.dir, table+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("no source file for table, skipping",
				zap.String("table", table),
				zap.String("path", path),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := normalizeHeader(table, rows[0])
	recs := make([]*record.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := record.New()
		for i, col := range header {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				rec.Set(col, nil)
			} else {
				rec.Set(col, cell)
			}
		}
		recs = append(recs, rec)
	}

	s.log.Info("source file read",
		zap.String("table", table),
		zap.String("path", path),
		zap.Int("rows", len(recs)),
	)
	return recs, nil
}

func normalizeHeader(table string, raw []string) []string {
	renames := headerRenames[table]
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if renamed, ok := renames[h]; ok {
			out[i] = renamed
			continue
		}
		out[i] = strings.ToLower(h)
	}
	return out
}
