// Package dictionary exports the destination schema as a set of CSV
// files: one catalog of columns, one of foreign keys, one of indexes, a
// per-table size summary, and a per-table column sheet under tables/.
// The export is read-only and independent of the import; DBAs consume it
// to review what the loader is writing into.
package dictionary
