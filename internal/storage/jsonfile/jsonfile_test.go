package jsonfile

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/admissions-api/internal/types"
	"github.com/stretchr/testify/require"
)

func newStoreForTest(t *testing.T) (*JSONFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admissions.json")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(path, log), path
}

func TestLoad_MissingFile_EmptyStore(t *testing.T) {
	t.Parallel()

	store, _ := newStoreForTest(t)

	records, err := store.Load()
	require.NoError(t, err, "first run has no data file and that is not an error")
	require.NotNil(t, records)
	require.Empty(t, records)
}

// Documented policy: unparseable persisted state loads as an empty
// store (and is logged) instead of refusing to start. See DESIGN.md
// for the corruption-masking trade-off.
func TestLoad_CorruptFile_EmptyStore(t *testing.T) {
	t.Parallel()

	store, path := newStoreForTest(t)
	require.NoError(t, os.WriteFile(path, []byte("{ this is not json"), 0o644))

	records, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newStoreForTest(t)

	want := map[string]types.Admission{
		"S001": {
			FirstName: "Ali", LastName: "Khan", FatherName: "Hassan Khan",
			Gender: types.GenderMale, DateOfBirth: "2012-04-18",
			ClassApplied: "7th Grade", ContactNumber: "0300-1234567",
			HeightCM: 170, WeightKG: 65,
			Address: types.Address{City: "Lahore", State: "Punjab"},
			Status:  "pending", BMI: 22.49, Verdict: "Normal",
		},
		"S002": {
			FirstName: "Sara", LastName: "Ahmed", FatherName: "Imran Ahmed",
			Gender: types.GenderFemale, DateOfBirth: "2011-09-02",
			ClassApplied: "8th Grade", ContactNumber: "0300-7654321",
			HeightCM: 160, WeightKG: 50,
			Address: types.Address{City: "Karachi", State: "Sindh"},
			Status:  "approved", BMI: 19.53, Verdict: "Normal",
		},
	}

	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSave_RewritesWholeCollection(t *testing.T) {
	t.Parallel()

	store, _ := newStoreForTest(t)

	require.NoError(t, store.Save(map[string]types.Admission{
		"S001": {FirstName: "Ali"},
		"S002": {FirstName: "Sara"},
	}))
	require.NoError(t, store.Save(map[string]types.Admission{
		"S002": {FirstName: "Sara"},
	}))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1, "save replaces the previous collection, it does not merge")
	require.Contains(t, got, "S002")
}
