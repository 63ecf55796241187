package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.SaveStream("gallery/album/photo.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	f, err := store.Open("gallery/album/photo.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete("gallery/album/photo.jpg"))
	require.NoError(t, store.Delete("gallery/album/photo.jpg"))
}

func TestLocalStorageConfinesPathsToBaseDir(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	_, err = store.Save("../../escape.txt", []byte("x"))
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(base, "escape.txt"))
	assert.NoError(t, statErr)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	_, err = store.Save("exports/old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("exports/new.csv", []byte("new"))
	require.NoError(t, err)
	_, err = store.Save("gallery/keep.jpg", []byte("img"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(base, "exports/old.csv"), past, past))
	require.NoError(t, os.Chtimes(filepath.Join(base, "gallery/keep.jpg"), past, past))

	deleted, err := store.CleanupOlderThan("exports", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/old.csv"}, deleted)

	missing, err := store.CleanupOlderThan("nothing-here", time.Hour)
	require.NoError(t, err)
	assert.Empty(t, missing)
}
