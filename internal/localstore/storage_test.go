package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageBackends(t *testing.T) map[string]Storage {
	t.Helper()

	fileStorage, err := NewFileStorage(filepath.Join(t.TempDir(), "items"))
	require.NoError(t, err)

	sqliteStorage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStorage.Close() })

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fileStorage,
		"sqlite": sqliteStorage,
	}
}

func TestStorage_SetGetRemove(t *testing.T) {
	for name, storage := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := storage.GetItem(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, storage.SetItem(ctx, "safgati_user:abc", `{"role":"admin"}`))
			value, ok, err := storage.GetItem(ctx, "safgati_user:abc")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"role":"admin"}`, value)

			require.NoError(t, storage.SetItem(ctx, "safgati_user:abc", `{"role":"editor"}`))
			value, _, err = storage.GetItem(ctx, "safgati_user:abc")
			require.NoError(t, err)
			assert.Equal(t, `{"role":"editor"}`, value)

			require.NoError(t, storage.RemoveItem(ctx, "safgati_user:abc"))
			_, ok, err = storage.GetItem(ctx, "safgati_user:abc")
			require.NoError(t, err)
			assert.False(t, ok)

			// removing twice is fine
			assert.NoError(t, storage.RemoveItem(ctx, "safgati_user:abc"))
		})
	}
}

func TestMemoryStorage_Closed(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Close())

	_, _, err := storage.GetItem(context.Background(), "k")
	assert.ErrorIs(t, err, ErrStorageClosed)
	assert.ErrorIs(t, storage.SetItem(context.Background(), "k", "v"), ErrStorageClosed)
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, DocumentKey, `{"products":[]}`))

	second, err := NewFileStorage(dir)
	require.NoError(t, err)
	value, ok, err := second.GetItem(ctx, DocumentKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"products":[]}`, value)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	for _, driver := range []string{DriverFile, DriverSQLite, DriverMemory} {
		storage, err := Open(driver, dir)
		if err != nil {
			t.Fatalf("Open(%q) failed: %v", driver, err)
		}
		if err := storage.SetItem(context.Background(), "k", "v"); err != nil {
			t.Errorf("%s: SetItem failed: %v", driver, err)
		}
		storage.Close()
	}

	if _, err := Open("s3", dir); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}
