package repository_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushveer007/courseget/internal/repository"
	"github.com/khushveer007/courseget/internal/status"
)

func newTestStore(t *testing.T) (*repository.BboltStore, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "progress.db")

	store, err := repository.NewBboltStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func TestBboltStore_RecordAndFind(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Record("asset-1", status.Downloaded, 2, nil)
	require.NoError(t, err)

	entry, err := store.Find("asset-1")
	require.NoError(t, err)
	assert.Equal(t, "asset-1", entry.AssetID)
	assert.Equal(t, status.Downloaded, entry.State)
	assert.Equal(t, 2, entry.Attempts)
	assert.Empty(t, entry.LastError)
	assert.False(t, entry.UpdatedAt.IsZero())
}

func TestBboltStore_RecordLastError(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Record("asset-1", status.Failed, 3, errors.New("server returned 500"))
	require.NoError(t, err)

	entry, err := store.Find("asset-1")
	require.NoError(t, err)
	assert.Equal(t, status.Failed, entry.State)
	assert.Equal(t, "server returned 500", entry.LastError)
}

func TestBboltStore_RecordEmptyID(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Record("", status.Pending, 0, nil)
	assert.Error(t, err)
}

func TestBboltStore_FindMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Find("never-recorded")
	assert.ErrorIs(t, err, repository.ErrEntryNotFound)
}

func TestBboltStore_SurvivesReopen(t *testing.T) {
	store, dbPath := newTestStore(t)

	require.NoError(t, store.Record("asset-1", status.Uploaded, 1, nil))
	require.NoError(t, store.Close())

	reopened, err := repository.NewBboltStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Load()
	require.NoError(t, err)
	require.Contains(t, entries, "asset-1")
	assert.Equal(t, status.Uploaded, entries["asset-1"].State)
}

func TestBboltStore_LoadRewritesInterrupted(t *testing.T) {
	store, dbPath := newTestStore(t)

	require.NoError(t, store.Record("mid-flight", status.Downloading, 1, nil))
	require.NoError(t, store.Record("finished", status.Downloaded, 1, nil))
	require.NoError(t, store.Close())

	reopened, err := repository.NewBboltStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Load()
	require.NoError(t, err)

	assert.Equal(t, status.Pending, entries["mid-flight"].State)
	assert.Equal(t, status.Downloaded, entries["finished"].State)

	// The rewrite is durable, not just a view over the loaded map.
	entry, err := reopened.Find("mid-flight")
	require.NoError(t, err)
	assert.Equal(t, status.Pending, entry.State)
}

func TestBboltStore_Reset(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Record("asset-1", status.Downloaded, 1, nil))
	require.NoError(t, store.Record("asset-2", status.Failed, 3, errors.New("timeout")))

	require.NoError(t, store.Reset())

	entries, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The store is still usable after a reset.
	require.NoError(t, store.Record("asset-3", status.Pending, 0, nil))

	entry, err := store.Find("asset-3")
	require.NoError(t, err)
	assert.Equal(t, status.Pending, entry.State)
}

func TestNewBboltStore_BadPath(t *testing.T) {
	// A directory cannot be opened as a database file.
	_, err := repository.NewBboltStore(t.TempDir())
	assert.Error(t, err)
}

func TestBboltStore_ConcurrentRecords(t *testing.T) {
	store, _ := newTestStore(t)

	done := make(chan error, 10)

	for i := 0; i < 10; i++ {
		go func(n int) {
			done <- store.Record("asset-1", status.Downloading, n, nil)
		}(i)
	}

	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}

	entry, err := store.Find("asset-1")
	require.NoError(t, err)
	assert.Equal(t, status.Downloading, entry.State)
}
