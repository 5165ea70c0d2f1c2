// Package jsonfile provides a JSON-file-backed implementation of the
// storage.Store interface: the entire admission mapping lives in one
// pretty-printed JSON document that is rewritten on every save.
//
// This is the classic "tiny service" persistence model — no server, no
// driver, and the data file is readable in any editor. It is NOT safe
// for multiple processes; the single service process serializes access
// through the service layer's lock.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/admissions-api/internal/types"
)

// JSONFile is the concrete implementation of storage.Store.
type JSONFile struct {
	path string
	log  *slog.Logger
}

// New returns a store persisting to the given file path. The file is
// not created until the first Save.
func New(path string, log *slog.Logger) *JSONFile {
	return &JSONFile{path: path, log: log}
}

// Load reads the whole mapping from disk.
//
// POLICY: a missing file AND an unparseable file both load as an empty
// store. Missing is the normal first-run case. Unparseable is logged
// at warn level because it can mask real corruption — the trade-off is
// that the service always starts; see DESIGN.md.
func (s *JSONFile) Load() (map[string]types.Admission, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]types.Admission{}, nil
		}
		return nil, fmt.Errorf("jsonfile.Load: read %s: %w", s.path, err)
	}

	records := map[string]types.Admission{}
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("persisted state is not valid JSON, starting from an empty store",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return map[string]types.Admission{}, nil
	}

	return records, nil
}

// Save rewrites the whole mapping to disk, pretty-printed so the data
// file stays hand-inspectable.
func (s *JSONFile) Save(records map[string]types.Admission) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile.Save: marshal: %w", err)
	}

	// First save may precede the data directory existing.
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonfile.Save: create dir %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile.Save: write %s: %w", s.path, err)
	}

	return nil
}
