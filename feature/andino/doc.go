// Package andino orchestrates the airline data load.
//
// It owns the table registry (load order, declared foreign keys, the
// reservation merge key) and drives the engine phase by phase: master
// tables first, then the staged reservation merge, then the dependent
// tables. Each table loads inside its own transaction so one table's
// failure never rolls back another's committed work. Rejected rows are
// exported per table for inspection, locally and optionally to object
// storage.
package andino
