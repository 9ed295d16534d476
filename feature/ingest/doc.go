// Package ingest reads the per-table CSV exports into ordered records.
//
// Every cell is read as text; empty cells become nil so the engine's null
// handling applies uniformly. Source headers are renamed to destination
// column names where the exports use legacy spellings. A missing file is
// an empty batch, not an error: sources deliver only the tables that
// changed.
package ingest
