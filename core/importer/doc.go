// Package importer implements the reconciliation engine that merges batches
// of externally sourced records into the relational store.
//
// Per destination table the engine decides, row by row, whether to insert,
// update or quarantine, while enforcing caller-declared foreign-key
// constraints and avoiding duplicate keys. For the one table that receives
// the largest batches (reserva, keyed by PNR + flight rather than by id)
// it performs a staged bulk merge instead: load the batch into an ephemeral
// staging table, run one set-based INSERT and one set-based UPDATE against
// the destination, drop the staging table.
//
// # Architecture
//
// The engine consists of four parts:
//
//  1. SchemaCache: fetches a destination table's column set once per run
//     and projects incoming records against it; unknown source fields are
//     dropped silently.
//
//  2. Resolver: answers "does id X exist in table T" by bulk-loading T's
//     id set on first reference. One query per referenced table instead of
//     one per row per constraint.
//
//  3. Engine.Load: the row classifier. Coerces foreign-key and boolean
//     columns, projects, validates constraints, then inserts, updates or
//     skips, bucketing failures into the quarantine set. A row-level
//     failure never aborts the batch.
//
//  4. Engine staging primitives: DedupeNaturalKey, FilterResolvable,
//     Stage, MergeStaged, DropStaging and SweepOrphans. The caller owns the
//     transaction around MergeStaged; Stage deliberately runs outside it so
//     a failed merge does not also discard the staging load.
//
// All state (schema cache, resolver cache) is per-Engine and therefore
// per-run: callers construct a fresh Engine for each import and pass the
// active transaction handle into each call. The engine never opens its own
// transaction. Referenced tables must be fully loaded before dependents
// are processed; the resolver cache is additive and never invalidated
// within a run.
package importer
