package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// newTestStore creates a temporary registry for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func envelope(labels ...string) *model.ModelEnvelope {
	return &model.ModelEnvelope{
		ModelType:  "NaiveBayes",
		Version:    model.EnvelopeVersion,
		Config:     json.RawMessage(`{"considerOnlyPresence":false,"smoothingFactor":1}`),
		Labels:     labels,
		Vocabulary: 12,
		Model:      json.RawMessage(`[{"considerOnlyPresence":false,"smoothingFactor":1},{},{},{},[]]`),
		SavedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSaveLoad(t *testing.T) {
	s, _ := newTestStore(t)

	want := envelope("prepay", "autoloan")
	require.NoError(t, s.Save("loans", want))

	got, err := s.Load("loans")
	require.NoError(t, err)
	assert.Equal(t, want.ModelType, got.ModelType)
	assert.Equal(t, want.Labels, got.Labels)
	assert.Equal(t, want.Vocabulary, got.Vocabulary)
	assert.JSONEq(t, string(want.Model), string(got.Model))
	assert.True(t, want.SavedAt.Equal(got.SavedAt))
}

func TestSaveReplaces(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Save("m", envelope("a", "b")))
	require.NoError(t, s.Save("m", envelope("c", "d")))

	got, err := s.Load("m")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, got.Labels)
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	s, _ := newTestStore(t)

	assert.True(t, errors.Is(s.Save("", envelope("a", "b")), errors.ErrInvalidArgument))
	assert.True(t, errors.Is(s.Save("m", nil), errors.ErrInvalidArgument))

	bad := envelope("a", "b")
	bad.Version = "0"
	assert.True(t, errors.Is(s.Save("m", bad), errors.ErrInvalidArgument))

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Load("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestListAndDelete(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Save("zeta", envelope("a", "b")))
	require.NoError(t, s.Save("alpha", envelope("x", "y", "z")))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, []string{"x", "y", "z"}, entries[0].Labels)
	assert.Equal(t, "zeta", entries[1].Name)
	assert.Positive(t, entries[1].Bytes)

	require.NoError(t, s.Delete("alpha"))
	assert.True(t, errors.Is(s.Delete("alpha"), ErrNotFound))

	entries, err = s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "zeta", entries[0].Name)
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Save("loans", envelope("prepay", "autoloan")))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load("loans")
	require.NoError(t, err)
	assert.Equal(t, []string{"prepay", "autoloan"}, got.Labels)
}
