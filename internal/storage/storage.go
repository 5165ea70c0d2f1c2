// Package storage defines the Store interface — the persistence
// contract the service depends on.
//
// WHY SO SMALL?
// ─────────────
// The store is a dumb collaborator: it persists and retrieves the
// whole id→record mapping as an opaque snapshot. All business rules
// (uniqueness, validation, derived fields, sort) live in the service
// layer, which performs read-modify-write cycles through this
// interface. Swapping the backing medium (JSON file, SQLite, an
// in-memory map in tests) is one line in main.go and zero service
// changes.
package storage

import "github.com/aanand-mishra/admissions-api/internal/types"

// Store is the persistence contract.
//
// Load returns the full mapping of record id → stored record. When no
// data has been persisted yet it returns an empty (non-nil) map, not
// an error — first run is not a failure. Implementations also load
// unreadable/corrupt persisted state as an empty map; that policy is
// theirs to log, the service never sees it.
//
// Save persists the full mapping, replacing whatever was stored
// before (whole-collection rewrite, not a partial patch).
//
// Record IDs live only as map keys; the Admission values inside the
// mapping carry an empty ID field.
type Store interface {
	Load() (map[string]types.Admission, error)
	Save(records map[string]types.Admission) error
}
