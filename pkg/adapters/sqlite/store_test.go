package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/sqlite"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "data", "scenes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunDocumentStoreContract(t, openStore(t), "")
}

func TestSQLiteStore_ReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "a.json", []byte(`[]`)))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	data, err := store.Read(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	paths, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json"}, paths)
}
