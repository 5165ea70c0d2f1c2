// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface using Go's standard database/sql package.
//
// The table is a key-value snapshot store, not a relational schema:
// one row per admission, the record serialized as JSON in the data
// column. Load reads every row; Save replaces every row inside a
// single transaction, mirroring the whole-collection-rewrite contract
// of storage.Store.
//
// The blank import below registers the sqlite3 driver with
// database/sql. The driver's init() function does this automatically
// when the package is loaded — we never call anything from it directly.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aanand-mishra/admissions-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Store.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path, creates the admissions table
// if it does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS admissions (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Load reads every stored snapshot into the id→record mapping.
// An empty table yields an empty (non-nil) map. A row whose snapshot
// no longer unmarshals is a hard error — unlike a brand-new store,
// a half-readable database should not be silently truncated by the
// next Save.
func (s *SQLite) Load() (map[string]types.Admission, error) {
	rows, err := s.Db.Query("SELECT id, data FROM admissions")
	if err != nil {
		return nil, fmt.Errorf("sqlite.Load: query: %w", err)
	}
	defer rows.Close()

	records := make(map[string]types.Admission)

	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("sqlite.Load: scan row: %w", err)
		}

		var rec types.Admission
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("sqlite.Load: decode record %q: %w", id, err)
		}
		records[id] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite.Load: rows iteration: %w", err)
	}

	return records, nil
}

// Save replaces the table contents with the given mapping inside one
// transaction, so a crash mid-save never leaves a half-written
// collection visible.
func (s *SQLite) Save(records map[string]types.Admission) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite.Save: begin: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM admissions"); err != nil {
		return fmt.Errorf("sqlite.Save: clear table: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO admissions (id, data) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("sqlite.Save: prepare: %w", err)
	}
	defer stmt.Close()

	for id, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("sqlite.Save: encode record %q: %w", id, err)
		}
		if _, err := stmt.Exec(id, string(data)); err != nil {
			return fmt.Errorf("sqlite.Save: insert record %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Save: commit: %w", err)
	}

	return nil
}
