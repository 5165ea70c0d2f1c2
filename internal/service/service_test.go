package service

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aanand-mishra/admissions-api/internal/types"
	"github.com/aanand-mishra/admissions-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory storage.Store double. Load and Save copy
// the mapping, the same isolation a real file-backed store gives, so
// a test can tell a persisted write from an in-flight mutation.
type memStore struct {
	records map[string]types.Admission
	saves   int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]types.Admission{}}
}

func (m *memStore) Load() (map[string]types.Admission, error) {
	out := make(map[string]types.Admission, len(m.records))
	for id, rec := range m.records {
		out[id] = rec
	}
	return out, nil
}

func (m *memStore) Save(records map[string]types.Admission) error {
	out := make(map[string]types.Admission, len(records))
	for id, rec := range records {
		out[id] = rec
	}
	m.records = out
	m.saves++
	return nil
}

func newSvcForTest(t *testing.T) (*Service, *memStore) {
	t.Helper()
	st := newMemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, log), st
}

// payload returns a valid create payload (without the id, which the
// service takes separately). Height 100cm makes bmi == weight, so
// sort tests can dial in exact bmi values.
func payload(first, last string, heightCM, weightKG float64) map[string]any {
	return map[string]any{
		"first_name":     first,
		"last_name":      last,
		"father_name":    "Hassan Khan",
		"gender":         "male",
		"date_of_birth":  "2012-04-18",
		"class_applied":  "7th Grade",
		"contact_number": "0300-1234567",
		"height_cm":      heightCM,
		"weight_kg":      weightKG,
		"status":         "pending",
		"address": map[string]any{
			"city":  "Lahore",
			"state": "Punjab",
		},
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, st := newSvcForTest(t)

	created, err := svc.Create("S001", payload("Ali", "Khan", 170, 65))
	require.NoError(t, err)
	require.Equal(t, "S001", created.ID)
	require.Equal(t, 22.49, created.BMI)
	require.Equal(t, "Normal", created.Verdict)

	// The stored snapshot keys the record by id and keeps the ID field
	// blank inside the value.
	stored, ok := st.records["S001"]
	require.True(t, ok)
	require.Empty(t, stored.ID)

	// Reading it back reattaches the id and yields the created record.
	got, err := svc.GetByID("S001")
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestCreate_DuplicateID_ConflictLeavesRecordUntouched(t *testing.T) {
	t.Parallel()

	svc, st := newSvcForTest(t)

	_, err := svc.Create("S001", payload("Ali", "Khan", 170, 65))
	require.NoError(t, err)

	_, err = svc.Create("S001", payload("Sara", "Ahmed", 160, 50))
	require.ErrorIs(t, err, ErrConflict)

	got, err := svc.GetByID("S001")
	require.NoError(t, err)
	require.Equal(t, "Ali", got.FirstName, "the existing record must survive a conflicting create")
	require.Equal(t, 1, st.saves, "a conflicting create must not write")
}

func TestCreate_InvalidPayload_StoreUntouched(t *testing.T) {
	t.Parallel()

	svc, st := newSvcForTest(t)

	_, err := svc.Create("S001", map[string]any{"first_name": "Ali"})
	require.Error(t, err)

	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr), "want *validation.Error, got %T", err)
	require.NotEmpty(t, vErr.Violations)
	require.Zero(t, st.saves, "a failed validation must never reach the store")
}

func TestCreate_BlankID_BadRequest(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Create("  ", payload("Ali", "Khan", 170, 65))
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestGetByID_Missing_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.GetByID("S404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByName_ExactCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Create("S001", payload("Ali", "Khan", 170, 65))
	require.NoError(t, err)
	_, err = svc.Create("S002", payload("ali", "khan", 160, 55))
	require.NoError(t, err)
	_, err = svc.Create("S003", payload("Sara", "Ahmed", 160, 50))
	require.NoError(t, err)

	matches, err := svc.GetByName("ALI KHAN")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "S001", matches[0].ID)
	require.Equal(t, "S002", matches[1].ID)

	// Exact match only — a bare first name is not the full name.
	_, err = svc.GetByName("Ali")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_MissingID_NotFound(t *testing.T) {
	t.Parallel()

	svc, st := newSvcForTest(t)

	_, err := svc.Update("S404", map[string]any{"status": "approved"})
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, st.saves)
}

func TestUpdate_WeightOnly_RecomputesDerived(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Create("S001", payload("Ali", "Khan", 170, 65))
	require.NoError(t, err)

	updated, err := svc.Update("S001", map[string]any{"weight_kg": 95.0})
	require.NoError(t, err)

	require.Equal(t, 170.0, updated.HeightCM, "caller must not have to resupply height")
	require.Equal(t, 32.87, updated.BMI)
	require.Equal(t, "Obese", updated.Verdict)
	require.Equal(t, "Ali", updated.FirstName)
}

func TestUpdate_CityPatch_PreservesState(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Create("S001", payload("Ali", "Khan", 170, 65))
	require.NoError(t, err)

	updated, err := svc.Update("S001", map[string]any{
		"address": map[string]any{"city": "Karachi"},
	})
	require.NoError(t, err)
	require.Equal(t, "Karachi", updated.Address.City)
	require.Equal(t, "Punjab", updated.Address.State)
}

func TestUpdate_InvalidPatch_KeepsStoredRecord(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Create("S001", payload("Ali", "Khan", 170, 65))
	require.NoError(t, err)

	_, err = svc.Update("S001", map[string]any{"weight_kg": -1.0})
	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))

	got, err := svc.GetByID("S001")
	require.NoError(t, err)
	require.Equal(t, 65.0, got.WeightKG, "a failed update must leave the record as it was")
}

func TestDelete_Twice(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.Create("S001", payload("Ali", "Khan", 170, 65))
	require.NoError(t, err)

	require.NoError(t, svc.Delete("S001"))
	require.ErrorIs(t, svc.Delete("S001"), ErrNotFound)
}

func TestList_EmptyStore_ReturnsEmptySlice(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	list, err := svc.List()
	require.NoError(t, err)
	require.NotNil(t, list, "an empty store lists as [], not null")
	require.Empty(t, list)
}

func TestList_IDAscendingOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	for _, id := range []string{"S003", "S001", "S002"} {
		_, err := svc.Create(id, payload("Ali", "Khan", 170, 65))
		require.NoError(t, err)
	}

	list, err := svc.List()
	require.NoError(t, err)
	require.Equal(t, []string{"S001", "S002", "S003"}, ids(list))
}

// Height 100cm pins bmi to the weight value: A=31.2, B=18.0, C=24.9.
func seedSortRecords(t *testing.T, svc *Service) {
	t.Helper()
	_, err := svc.Create("A", payload("Ayesha", "Malik", 100, 31.2))
	require.NoError(t, err)
	_, err = svc.Create("B", payload("Bilal", "Sheikh", 100, 18.0))
	require.NoError(t, err)
	_, err = svc.Create("C", payload("Chandni", "Raza", 100, 24.9))
	require.NoError(t, err)
}

func TestSort_ByBMI(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)
	seedSortRecords(t, svc)

	asc, err := svc.Sort("bmi", "asc")
	require.NoError(t, err)
	require.Equal(t, []string{"B", "C", "A"}, ids(asc))

	desc, err := svc.Sort("bmi", "desc")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C", "B"}, ids(desc))
}

func TestSort_Stable_EqualKeysKeepListOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	// Same bmi everywhere; created out of id order on purpose.
	for _, id := range []string{"S002", "S001", "S003"} {
		_, err := svc.Create(id, payload("Ali", "Khan", 100, 22.0))
		require.NoError(t, err)
	}

	sorted, err := svc.Sort("bmi", "asc")
	require.NoError(t, err)
	require.Equal(t, []string{"S001", "S002", "S003"}, ids(sorted),
		"equal-key records must keep the List (id-ascending) order")
}

func TestSort_InvalidKeyOrOrder_BadRequest(t *testing.T) {
	t.Parallel()

	svc, st := newSvcForTest(t)
	seedSortRecords(t, svc)
	writesBefore := st.saves

	_, err := svc.Sort("first_name", "asc")
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Sort("bmi", "sideways")
	require.ErrorIs(t, err, ErrBadRequest)

	require.Equal(t, writesBefore, st.saves, "sort must never mutate the store")
}

func TestSort_SkipsRecordsInvalidForKey(t *testing.T) {
	t.Parallel()

	svc, st := newSvcForTest(t)
	seedSortRecords(t, svc)

	// Simulate a hand-edited data file: a record the validator would
	// never have produced.
	st.records["Z"] = types.Admission{
		FirstName: "Zara", LastName: "Iqbal",
		HeightCM: 0, WeightKG: 0,
	}

	sorted, err := svc.Sort("height_cm", "asc")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids(sorted),
		"records without a usable key value are excluded, not fatal")
}

func ids(records []types.Admission) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
