package importer

import "andino-loader/core/record"

// LoadMode selects how rows carrying an existing surrogate id are treated.
type LoadMode int

const (
	// ModeInsertOnly inserts rows whose id is absent from the destination
	// and skips the rest. Master tables and append-only logs load this way.
	ModeInsertOnly LoadMode = iota

	// ModeUpsert updates rows whose id already exists at the destination
	// and inserts the rest.
	ModeUpsert
)

// ForeignKey declares that a column must reference an existing id in
// another table. Constraints are caller-declared, not auto-discovered.
type ForeignKey struct {
	// Column is the local column holding the referenced id.
	Column string

	// References is the referenced table; its id set is bulk-loaded into
	// the resolver on first use.
	References string

	// Optional relaxes the constraint: a non-resolving value is nulled out
	// and the row proceeds, instead of being quarantined.
	Optional bool
}

// LoadSpec describes one destination table for the row-by-row load path.
type LoadSpec struct {
	// Table is the destination table name.
	Table string

	// Mode selects insert-only or upsert behavior.
	Mode LoadMode

	// ForeignKeys are the constraints every row must satisfy.
	ForeignKeys []ForeignKey
}

// MergeSpec describes the staged bulk merge for one destination table keyed
// on a natural key rather than the surrogate id.
type MergeSpec struct {
	// Table is the destination table name.
	Table string

	// IDColumn is the destination's surrogate id column, used only to
	// detect "no match" on the left join. Defaults to "id".
	IDColumn string

	// NaturalKey are the columns that identify a row across loads.
	NaturalKey []string

	// Columns is the full set of columns this merge knows how to carry,
	// natural key included.
	Columns []string

	// UpdateColumns are the mutable business columns overwritten on match.
	UpdateColumns []string

	// ForeignKeys are the constraints a row must satisfy to enter staging.
	ForeignKeys []ForeignKey
}

// SkipReason distinguishes the two no-op outcomes. The source system
// counted both as "skipped" but they mean different things: one is a row
// with nothing to write, the other an idempotent replay of an existing id.
type SkipReason int

const (
	// SkipNoColumns means the row had no non-null writable columns left.
	SkipNoColumns SkipReason = iota

	// SkipExistingID means an insert-only row's id already exists at the
	// destination; the insert is an idempotent no-op.
	SkipExistingID
)

// FailureKind classifies why a row was quarantined.
type FailureKind int

const (
	// FailForeignKey means a declared constraint column did not resolve.
	FailForeignKey FailureKind = iota

	// FailMissingColumn means a declared constraint column was absent or
	// null after coercion.
	FailMissingColumn

	// FailWrite means the store rejected the insert or update.
	FailWrite
)

func (k FailureKind) String() string {
	switch k {
	case FailForeignKey:
		return "foreign_key"
	case FailMissingColumn:
		return "missing_column"
	case FailWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Rejected is one quarantined row: the record post-coercion, pre-write,
// with the reason it was set aside. Rejected rows are never retried within
// a run; the caller persists them for inspection.
type Rejected struct {
	Record *record.Record
	Kind   FailureKind
	// Column is the offending column for constraint failures, empty for
	// write failures.
	Column string
	// Err is the underlying store error for write failures, nil otherwise.
	Err error
}

// Outcome is the per-table result quadruple, accumulated across a batch.
// The two skip sub-reasons are reported separately because they are not
// equivalent; Skipped is their sum.
type Outcome struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`

	SkippedNoColumns  int `json:"skipped_no_columns,omitempty"`
	SkippedExistingID int `json:"skipped_existing_id,omitempty"`
}

// Add merges another outcome into this one.
func (o *Outcome) Add(other Outcome) {
	o.Inserted += other.Inserted
	o.Updated += other.Updated
	o.Skipped += other.Skipped
	o.Invalid += other.Invalid
	o.SkippedNoColumns += other.SkippedNoColumns
	o.SkippedExistingID += other.SkippedExistingID
}

func (o *Outcome) skip(reason SkipReason) {
	o.Skipped++
	switch reason {
	case SkipNoColumns:
		o.SkippedNoColumns++
	case SkipExistingID:
		o.SkippedExistingID++
	}
}
