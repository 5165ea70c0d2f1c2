// Package service implements the admission record operations on top of
// a storage.Store collaborator: create, read, partial update, delete,
// list, name search, and sorted listing.
//
// The service owns ALL store-level invariants:
//
//   - id uniqueness (create fails on a duplicate, update/delete fail
//     on a missing id);
//   - validation-before-persistence — a payload that fails validation
//     never reaches the store;
//   - derived-field freshness — every write goes through the
//     validation package, which recomputes bmi/verdict.
//
// Every mutating operation is one atomic read-modify-write cycle under
// a write lock, so two concurrent updates to the same id cannot race
// and silently drop one. Reads share a read lock and never observe a
// half-written mapping.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/aanand-mishra/admissions-api/internal/storage"
	"github.com/aanand-mishra/admissions-api/internal/types"
	"github.com/aanand-mishra/admissions-api/internal/validation"
)

// Sentinel errors for the operation outcomes the HTTP layer has to
// tell apart. Callers match with errors.Is; the wrapped message is the
// human-readable detail.
var (
	// ErrNotFound — the target id (or name) has no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict — create with an id that is already taken.
	ErrConflict = errors.New("record already exists")
	// ErrBadRequest — malformed request parameter (sort key/order, blank id).
	ErrBadRequest = errors.New("bad request")
)

// Sort keys and orders accepted by Sort.
var (
	sortKeys   = []string{"height_cm", "weight_kg", "bmi"}
	sortOrders = []string{"asc", "desc"}
)

// Service orchestrates admission operations against a Store.
// Construct with New and share one instance per process.
type Service struct {
	store storage.Store
	log   *slog.Logger

	// mu serializes read-modify-write cycles. Mutations take the write
	// lock for their whole load→validate→save span; reads take the
	// read lock.
	mu sync.RWMutex
}

// New returns a Service backed by the given store.
func New(store storage.Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Create validates the payload and stores it under the caller-assigned
// id. Fails with ErrConflict if the id is taken and *validation.Error
// if the payload is invalid; in both cases the store is untouched.
func (s *Service) Create(id string, payload map[string]any) (types.Admission, error) {
	if strings.TrimSpace(id) == "" {
		return types.Admission{}, fmt.Errorf("%w: field id is required", ErrBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load()
	if err != nil {
		return types.Admission{}, err
	}

	if _, exists := records[id]; exists {
		return types.Admission{}, fmt.Errorf("admission record %q: %w", id, ErrConflict)
	}

	rec, err := validation.ValidateFull(payload)
	if err != nil {
		return types.Admission{}, err
	}

	// The id lives as the mapping key, not inside the snapshot.
	rec.ID = ""
	records[id] = rec

	if err := s.store.Save(records); err != nil {
		return types.Admission{}, err
	}

	s.log.Info("admission record created", slog.String("id", id))

	rec.ID = id
	return rec, nil
}

// GetByID returns the record stored under id, or ErrNotFound.
func (s *Service) GetByID(id string) (types.Admission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.store.Load()
	if err != nil {
		return types.Admission{}, err
	}

	rec, ok := records[id]
	if !ok {
		return types.Admission{}, fmt.Errorf("no admission record with id %q: %w", id, ErrNotFound)
	}

	rec.ID = id
	return rec, nil
}

// GetByName returns every record whose full name ("first_name
// last_name") equals the query, compared case-insensitively. The match
// is EXACT, not substring. No match is ErrNotFound, matching the
// single-record read semantics.
func (s *Service) GetByName(name string) ([]types.Admission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	var matches []types.Admission
	for _, id := range sortedIDs(records) {
		rec := records[id]
		full := rec.FirstName + " " + rec.LastName
		if strings.EqualFold(full, name) {
			rec.ID = id
			matches = append(matches, rec)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no admission record named %q: %w", name, ErrNotFound)
	}

	return matches, nil
}

// Update merges the partial payload onto the existing record,
// revalidates the merged result (recomputing bmi/verdict) and persists
// it. ErrNotFound if the id is absent; *validation.Error leaves the
// stored record untouched.
func (s *Service) Update(id string, patch map[string]any) (types.Admission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load()
	if err != nil {
		return types.Admission{}, err
	}

	existing, ok := records[id]
	if !ok {
		return types.Admission{}, fmt.Errorf("no admission record with id %q: %w", id, ErrNotFound)
	}

	rec, err := validation.ValidatePartial(existing, patch)
	if err != nil {
		return types.Admission{}, err
	}

	rec.ID = ""
	records[id] = rec

	if err := s.store.Save(records); err != nil {
		return types.Admission{}, err
	}

	s.log.Info("admission record updated", slog.String("id", id))

	rec.ID = id
	return rec, nil
}

// Delete removes the record stored under id, or fails with ErrNotFound
// (so deleting twice reports the second call as a miss).
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load()
	if err != nil {
		return err
	}

	if _, ok := records[id]; !ok {
		return fmt.Errorf("no admission record with id %q: %w", id, ErrNotFound)
	}

	delete(records, id)

	if err := s.store.Save(records); err != nil {
		return err
	}

	s.log.Info("admission record deleted", slog.String("id", id))
	return nil
}

// List returns all records in id-ascending order. The map-backed store
// has no insertion order, so id order is the store-defined order — it
// is deterministic and doubles as the stability baseline for Sort.
// Returns an empty slice, not nil, when the store is empty.
func (s *Service) List() ([]types.Admission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	list := make([]types.Admission, 0, len(records))
	for _, id := range sortedIDs(records) {
		rec := records[id]
		rec.ID = id
		list = append(list, rec)
	}

	return list, nil
}

// Sort returns the records ordered by the given numeric key.
//
//	sortBy ∈ {height_cm, weight_kg, bmi}
//	order  ∈ {asc, desc}
//
// Anything else is ErrBadRequest. The sort is STABLE: records with
// equal key values keep their List order relative to each other.
//
// POLICY: a record whose value is unusable for the key (non-positive
// or non-finite, e.g. loaded from a hand-edited data file) is silently
// excluded from the result rather than failing the whole request. See
// DESIGN.md.
func (s *Service) Sort(sortBy, order string) ([]types.Admission, error) {
	if !contains(sortKeys, sortBy) {
		return nil, fmt.Errorf("%w: invalid sort key %q, choose one of %s",
			ErrBadRequest, sortBy, strings.Join(sortKeys, ", "))
	}
	if !contains(sortOrders, order) {
		return nil, fmt.Errorf("%w: invalid order %q, choose asc or desc",
			ErrBadRequest, order)
	}

	all, err := s.List()
	if err != nil {
		return nil, err
	}

	sorted := make([]types.Admission, 0, len(all))
	for _, rec := range all {
		if _, ok := sortValue(rec, sortBy); ok {
			sorted = append(sorted, rec)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		vi, _ := sortValue(sorted[i], sortBy)
		vj, _ := sortValue(sorted[j], sortBy)
		if order == "desc" {
			return vi > vj
		}
		return vi < vj
	})

	return sorted, nil
}

// sortValue extracts the numeric sort key from a record. ok is false
// when the value is unusable (Sort excludes such records).
func sortValue(rec types.Admission, key string) (float64, bool) {
	var v float64
	switch key {
	case "height_cm":
		v = rec.HeightCM
	case "weight_kg":
		v = rec.WeightKG
	case "bmi":
		v = rec.BMI
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// sortedIDs returns the mapping's keys in ascending order.
func sortedIDs(records map[string]types.Admission) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
