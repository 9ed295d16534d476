// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or
// SQLite (tests, local experiments) connections based on the application's
// configuration.
//
// # Schema Inspection
//
// The inspector retrieves live table metadata: column names and types,
// declared foreign keys, audit timestamp columns, and the table list of the
// current schema. The import engine fetches a table's columns once per run
// and caches them; the dictionary export walks the whole schema.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "reserva")
package database
