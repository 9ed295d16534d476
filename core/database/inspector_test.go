package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	// Setup In-Memory DB
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Create a test table
	err = db.Exec("CREATE TABLE pasajero (id INTEGER PRIMARY KEY, nombre TEXT, documento TEXT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "pasajero")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["nombre"])
	assert.Equal(t, "text", colMap["documento"])

	// Non-existent table: PRAGMA table_info returns empty result, no error
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetForeignKeys(t *testing.T) {
	cfg := Config{Driver: "sqlite", Name: ":memory:"}
	db, err := Connect(cfg)
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE TABLE pasajero (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("CREATE TABLE vuelo (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Exec(`CREATE TABLE reserva (
		id INTEGER PRIMARY KEY,
		pnr TEXT,
		pasajero_id INTEGER REFERENCES pasajero(id),
		vuelo_id INTEGER REFERENCES vuelo(id)
	)`).Error)

	fks, err := GetForeignKeys(db, "reserva")
	assert.NoError(t, err)
	assert.Len(t, fks, 2)

	byCol := make(map[string]ForeignKeyInfo)
	for _, fk := range fks {
		byCol[fk.Column] = fk
	}
	assert.Equal(t, "pasajero", byCol["pasajero_id"].ReferencedTable)
	assert.Equal(t, "vuelo", byCol["vuelo_id"].ReferencedTable)
}

func TestDetectTimestampColumns(t *testing.T) {
	cfg := Config{Driver: "sqlite", Name: ":memory:"}
	db, err := Connect(cfg)
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE reserva (
		id INTEGER PRIMARY KEY,
		pnr TEXT,
		creado_en DATETIME,
		actualizado_en DATETIME
	)`).Error)
	require.NoError(t, db.Exec("CREATE TABLE equipaje (id INTEGER PRIMARY KEY, peso REAL)").Error)

	created, updated, err := DetectTimestampColumns(db, "reserva")
	assert.NoError(t, err)
	assert.Equal(t, "creado_en", created)
	assert.Equal(t, "actualizado_en", updated)

	// No audit columns at all
	created, updated, err = DetectTimestampColumns(db, "equipaje")
	assert.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, updated)
}

func TestListTables(t *testing.T) {
	cfg := Config{Driver: "sqlite", Name: ":memory:"}
	db, err := Connect(cfg)
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE TABLE aerolinea (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("CREATE TABLE vuelo (id INTEGER PRIMARY KEY)").Error)

	tables, err := ListTables(db)
	assert.NoError(t, err)
	assert.Equal(t, []string{"aerolinea", "vuelo"}, tables)
}
