package andino

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"andino-loader/core/database"
	"andino-loader/feature/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	stmts := []string{
		"CREATE TABLE terminal (id INTEGER PRIMARY KEY, nombre TEXT)",
		"CREATE TABLE aerolinea (id INTEGER PRIMARY KEY, nombre TEXT, codigo_iata TEXT)",
		"CREATE TABLE aeronave (id INTEGER PRIMARY KEY, matricula TEXT, modelo TEXT, capacidad_pasajeros INTEGER)",
		"CREATE TABLE puerta (id INTEGER PRIMARY KEY, codigo TEXT, terminal_id INTEGER)",
		"CREATE TABLE vuelo (id INTEGER PRIMARY KEY, numero TEXT, aerolinea_id INTEGER, aeronave_id INTEGER, puerta_id INTEGER)",
		"CREATE TABLE pasajero (id INTEGER PRIMARY KEY, nombre TEXT, documento TEXT)",
		`CREATE TABLE reserva (
			id INTEGER PRIMARY KEY,
			pnr TEXT, pasajero_id INTEGER, vuelo_id INTEGER,
			asiento TEXT, estado_reserva TEXT, fecha_reserva TEXT,
			creado_en DATETIME, actualizado_en DATETIME
		)`,
		"CREATE TABLE pase_abordar (id INTEGER PRIMARY KEY, reserva_id INTEGER, grupo TEXT)",
		"CREATE TABLE log_cambios (id INTEGER PRIMARY KEY, entidad TEXT, detalle TEXT)",
	}
	for _, s := range stmts {
		require.NoError(t, db.Exec(s).Error)
	}
	return db
}

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeRunData(t *testing.T, dir string) {
	writeSource(t, dir, "terminal.csv", "id,nombre\n1,T1\n")
	writeSource(t, dir, "aerolinea.csv", "id,nombre,codigo_iata\n1,Avianca,AV\n")
	writeSource(t, dir, "aeronave.csv", "id,Matricula,capacidad\n1,HK-1,150\n")
	writeSource(t, dir, "puerta.csv", "id,codigo,terminal_id\n1,A1,1\n2,Z9,99\n")
	writeSource(t, dir, "vuelo.csv",
		"id,numero,aerolinea_id,aeronave_id,puerta_id\n5,AV205,1,1,1\n6,AV300,1,1,77\n")
	writeSource(t, dir, "pasajero.csv", "id,nombre,documento\n1,Ada,CC-1\n2,Grace,CC-2\n")
	writeSource(t, dir, "reserva.csv",
		"PNR,PasajeroID,VueloID,Asiento,Estado,FechaReserva\n"+
			"AB123,1,5,12A,CONFIRMADA,2026-01-15\n"+
			"AB123,1,5,12B,CONFIRMADA,2026-01-15\n"+
			"CD456,2,6,14C,CONFIRMADA,2026-01-16\n"+
			"XX999,1,99,1A,CONFIRMADA,2026-01-17\n")
	writeSource(t, dir, "pase_abordar.csv", "id,reserva_id,grupo\n")
	writeSource(t, dir, "log_cambios.csv", "id,entidad,detalle\n1,reserva,alta inicial\n")
}

func newTestService(t *testing.T, db *gorm.DB, dataDir, outDir string) *Service {
	log := zap.NewNop()
	src := ingest.NewSource(dataDir, log)
	exp := NewExporter(outDir, nil, "", false, log)
	return NewService(db, src, exp, log, 100)
}

func findResult(t *testing.T, s *RunSummary, table string) TableResult {
	t.Helper()
	for _, r := range s.Tables {
		if r.Table == table {
			return r
		}
	}
	t.Fatalf("no result for table %s", table)
	return TableResult{}
}

func TestRunFullImport(t *testing.T) {
	db := setupRunDB(t)
	dataDir, outDir := t.TempDir(), t.TempDir()
	writeRunData(t, dataDir)

	svc := newTestService(t, db, dataDir, outDir)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)

	// Masters: the gate with a dangling terminal is quarantined, the stale
	// gate assignment on the second flight is cleared instead.
	assert.Equal(t, 1, findResult(t, summary, "terminal").Outcome.Inserted)
	puerta := findResult(t, summary, "puerta")
	assert.Equal(t, 1, puerta.Outcome.Inserted)
	assert.Equal(t, 1, puerta.Outcome.Invalid)
	assert.Equal(t, 2, findResult(t, summary, "vuelo").Outcome.Inserted)

	var puertaID *int64
	require.NoError(t, db.Raw("SELECT puerta_id FROM vuelo WHERE id = 6").Scan(&puertaID).Error)
	assert.Nil(t, puertaID)

	// Reservations: duplicate locator collapsed to the later seat, the row
	// referencing flight 99 rejected.
	reserva := findResult(t, summary, "reserva")
	assert.Equal(t, 1, reserva.Outcome.Invalid)
	var count int64
	require.NoError(t, db.Table("reserva").Count(&count).Error)
	assert.Equal(t, int64(2), count)
	var asiento string
	require.NoError(t, db.Raw("SELECT asiento FROM reserva WHERE pnr = 'AB123'").Scan(&asiento).Error)
	assert.Equal(t, "12B", asiento)

	// Quarantine exports landed on disk.
	_, err = os.Stat(filepath.Join(outDir, "reserva_invalidas.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "puerta_invalidas.csv"))
	assert.NoError(t, err)

	assert.Equal(t, 1, findResult(t, summary, "log_cambios").Outcome.Inserted)
}

func TestRunIsIdempotent(t *testing.T) {
	db := setupRunDB(t)
	dataDir, outDir := t.TempDir(), t.TempDir()
	writeRunData(t, dataDir)

	svc := newTestService(t, db, dataDir, outDir)
	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	svc2 := newTestService(t, db, dataDir, outDir)
	summary, err := svc2.Run(context.Background())
	require.NoError(t, err)

	// Masters skip on existing ids instead of inserting again.
	vuelo := findResult(t, summary, "vuelo")
	assert.Equal(t, 0, vuelo.Outcome.Inserted)
	assert.Equal(t, 2, vuelo.Outcome.SkippedExistingID)

	// The reservation merge converges: same row count, same seats.
	var count int64
	require.NoError(t, db.Table("reserva").Count(&count).Error)
	assert.Equal(t, int64(2), count)
	var asiento string
	require.NoError(t, db.Raw("SELECT asiento FROM reserva WHERE pnr = 'AB123'").Scan(&asiento).Error)
	assert.Equal(t, "12B", asiento)
}

func TestRunSurvivesMissingTable(t *testing.T) {
	db := setupRunDB(t)
	dataDir, outDir := t.TempDir(), t.TempDir()
	writeRunData(t, dataDir)
	// equipaje has source data but no destination table.
	writeSource(t, dataDir, "equipaje.csv", "id,reserva_id,vuelo_id,peso\n1,1,5,23.5\n")

	svc := newTestService(t, db, dataDir, outDir)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	equipaje := findResult(t, summary, "equipaje")
	assert.NotEmpty(t, equipaje.Error)

	// Earlier phases committed regardless.
	var count int64
	require.NoError(t, db.Table("reserva").Count(&count).Error)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 1, findResult(t, summary, "log_cambios").Outcome.Inserted)
}

func TestRunContinuesAfterMergeFailure(t *testing.T) {
	db := setupRunDB(t)
	// No vuelo table: the reservation merge cannot preload its id set.
	require.NoError(t, db.Exec("DROP TABLE vuelo").Error)

	dataDir, outDir := t.TempDir(), t.TempDir()
	writeSource(t, dataDir, "reserva.csv",
		"PNR,PasajeroID,VueloID,Asiento,Estado,FechaReserva\n"+
			"AB123,1,5,12A,CONFIRMADA,2026-01-15\n")
	writeSource(t, dataDir, "log_cambios.csv", "id,entidad,detalle\n1,reserva,alta inicial\n")

	svc := newTestService(t, db, dataDir, outDir)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	// The merge fault is recorded, the dependent loads still ran.
	reserva := findResult(t, summary, "reserva")
	assert.NotEmpty(t, reserva.Error)
	assert.Equal(t, 1, findResult(t, summary, "log_cambios").Outcome.Inserted)
}

func TestRunAbortsOnMissingReservaColumns(t *testing.T) {
	db := setupRunDB(t)
	dataDir, outDir := t.TempDir(), t.TempDir()
	writeRunData(t, dataDir)
	writeSource(t, dataDir, "reserva.csv", "Asiento,Estado\n1A,CONFIRMADA\n")

	svc := newTestService(t, db, dataDir, outDir)
	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required column")
}

func TestRunSweepsOrphanedStaging(t *testing.T) {
	db := setupRunDB(t)
	require.NoError(t, db.Exec("CREATE TABLE reserva_staging_0badf00d (pnr TEXT)").Error)

	dataDir, outDir := t.TempDir(), t.TempDir()
	writeRunData(t, dataDir)

	svc := newTestService(t, db, dataDir, outDir)
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reserva_staging_0badf00d"}, summary.SweptStaging)
}
