package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadTableRenamesAndNullifies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reserva.csv",
		"PNR,PasajeroID,VueloID,Asiento,Estado,FechaReserva\n"+
			"AB123,1,5,12A,CONFIRMADA,2026-01-15\n"+
			"CD456,2,5,,CONFIRMADA,\n")

	s := NewSource(dir, zap.NewNop())
	recs, err := s.ReadTable("reserva")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t,
		[]string{"pnr", "pasajero_id", "vuelo_id", "asiento", "estado_reserva", "fecha_reserva"},
		recs[0].Fields())

	pnr, _ := recs[0].Get("pnr")
	assert.Equal(t, "AB123", pnr)

	// Empty cells come through as nil, not "".
	asiento, ok := recs[1].Get("asiento")
	assert.True(t, ok)
	assert.Nil(t, asiento)
}

func TestReadTableLowercasesUnmappedHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "aeronave.csv",
		"ID,Matricula,capacidad\n7,HK-1,150\n")

	s := NewSource(dir, zap.NewNop())
	recs, err := s.ReadTable("aeronave")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"id", "matricula", "capacidad_pasajeros"}, recs[0].Fields())
}

func TestReadTableMissingFileIsEmptyBatch(t *testing.T) {
	s := NewSource(t.TempDir(), zap.NewNop())
	recs, err := s.ReadTable("equipaje")
	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadTableMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vuelo.csv", "id,numero\n1,\"unterminated\n")

	s := NewSource(dir, zap.NewNop())
	_, err := s.ReadTable("vuelo")
	assert.Error(t, err)
}

func TestReadTableHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "terminal.csv", "id,nombre\n")

	s := NewSource(dir, zap.NewNop())
	recs, err := s.ReadTable("terminal")
	assert.NoError(t, err)
	assert.Empty(t, recs)
}
