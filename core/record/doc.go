// Package record defines the ordered field/value row abstraction shared by
// the ingest readers and the import engine. It decouples the set of fields
// a source row happens to carry from the set of columns a destination table
// accepts: readers emit whatever the file contains, the engine projects that
// against the live table schema.
package record
