package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndRead(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("exp-1/analytics.png", []byte("png"))
	require.NoError(t, err)
	require.Equal(t, "exp-1/analytics.png", rel)

	data, err := store.Read(rel)
	require.NoError(t, err)
	require.Equal(t, []byte("png"), data)

	require.NoError(t, store.Delete(rel))
	require.NoError(t, store.Delete(rel))
	_, err = store.Read(rel)
	require.Error(t, err)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.txt", []byte("x"))
	require.Error(t, err)
	_, err = store.Read("/etc/passwd")
	require.Error(t, err)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old/analytics.pdf", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("new/analytics.pdf", []byte("new"))
	require.NoError(t, err)

	now := time.Now()
	stale := now.Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old", "analytics.pdf"), stale, stale))

	deleted, err := store.CleanupOlderThan(24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, []string{"old/analytics.pdf"}, deleted)

	_, err = os.Stat(filepath.Join(dir, "old"))
	require.True(t, os.IsNotExist(err))
	_, err = store.Read("new/analytics.pdf")
	require.NoError(t, err)
}
