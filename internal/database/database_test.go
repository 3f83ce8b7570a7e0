package database

import (
	"path/filepath"
	"testing"

	"go-wallhaven-rotator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetPutDelete(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, db.Has([]byte("missing")))

	require.NoError(t, db.Put([]byte("k"), []byte("value")))
	assert.True(t, db.Has([]byte("k")))
	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, db.Delete([]byte("k")))
	assert.ErrorIs(t, db.Delete([]byte("k")), ErrNotFound)
}

func TestStateRoundTrip(t *testing.T) {
	db := openTestDB(t)

	fresh, err := db.LoadState()
	require.NoError(t, err)
	assert.Empty(t, fresh.SavedWallpapers)
	assert.Equal(t, -1, fresh.SearchTermIndex)

	state := models.State{
		SavedWallpapers:      []string{"a|||ta|||", "b|||tb|||/x/b.jpg|||1"},
		ShownSavedWallpapers: []string{"a|||ta|||"},
		CurrentURL:           "a",
		Thumbnail:            "ta",
		LastValidImagePath:   "a",
		CurrentIsDark:        models.DarkYes,
		SearchTermIndex:      2,
	}
	require.NoError(t, db.SaveState(state))

	loaded, err := db.LoadState()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestCompressionHelpers(t *testing.T) {
	raw := []byte("plain text that is not gzipped")
	out, err := decompressIfGzipped(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)

	compressed, err := compressGzip(raw, 9)
	require.NoError(t, err)
	assert.Equal(t, gzipMagicBytes, compressed[:2])
	out, err = decompressIfGzipped(compressed)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}
