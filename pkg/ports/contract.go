package ports

import (
	"context"
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract. root is prepended to every document path, so file
// stores can pass a temp dir and key-value stores an empty string.
func RunDocumentStoreContract(t *testing.T, store DocumentStore, root string) {
	ctx := context.Background()
	prefix := root + "contract-" + time.Now().Format("20060102150405")

	t.Run("Write and Read", func(t *testing.T) {
		path := prefix + "/scenes/a.json"

		err := store.Write(ctx, path, []byte(`[{"label":"Group"}]`))
		require.NoError(t, err, "Write should create parent locations")

		data, err := store.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, `[{"label":"Group"}]`, string(data))

		ok, err := store.Exists(ctx, path)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Write replaces", func(t *testing.T) {
		path := prefix + "/replace.json"
		require.NoError(t, store.Write(ctx, path, []byte("old")))
		require.NoError(t, store.Write(ctx, path, []byte("new")))

		data, err := store.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("Read Non-Existent", func(t *testing.T) {
		_, err := store.Read(ctx, prefix+"/missing.json")
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

		ok, err := store.Exists(ctx, prefix+"/missing.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Rename", func(t *testing.T) {
		from := prefix + "/from.json"
		to := prefix + "/to.json"
		require.NoError(t, store.Write(ctx, from, []byte("moved")))
		require.NoError(t, store.Write(ctx, to, []byte("replaced")))

		require.NoError(t, store.Rename(ctx, from, to))

		ok, err := store.Exists(ctx, from)
		require.NoError(t, err)
		assert.False(t, ok, "source should be gone after rename")

		data, err := store.Read(ctx, to)
		require.NoError(t, err)
		assert.Equal(t, "moved", string(data))
	})

	t.Run("Rename Non-Existent", func(t *testing.T) {
		err := store.Rename(ctx, prefix+"/nothing.json", prefix+"/elsewhere.json")
		assert.Error(t, err)
	})

	t.Run("Remove", func(t *testing.T) {
		path := prefix + "/remove.json"
		require.NoError(t, store.Write(ctx, path, []byte("x")))
		require.NoError(t, store.Remove(ctx, path))

		ok, err := store.Exists(ctx, path)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, store.Remove(ctx, path), "removing a missing document is not an error")
	})

	t.Run("BackupPath", func(t *testing.T) {
		path := prefix + "/backup.json"
		require.NoError(t, store.Write(ctx, path, []byte("keep")))

		backup, err := store.BackupPath(ctx, path)
		require.NoError(t, err)
		assert.NotEqual(t, path, backup)

		ok, err := store.Exists(ctx, backup)
		require.NoError(t, err)
		assert.False(t, ok, "backup location should be unused")

		require.NoError(t, store.Rename(ctx, path, backup))
		require.NoError(t, store.Rename(ctx, backup, path))
		data, err := store.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data))
	})
}

// RunRenderRegistryContract verifies that a registry which also reports snapshots
// tracks membership of entities and lights.
func RunRenderRegistryContract(t *testing.T, newRegistry func() RenderRegistry) {
	t.Run("Insert and Remove Entity", func(t *testing.T) {
		reg := newRegistry()
		snap, ok := reg.(Snapshotter)
		require.True(t, ok, "registry must implement Snapshotter")

		e := render.NewEntity(render.EntityStandard, render.MeshHandle{ID: "m", Source: domain.ModelCube})
		reg.InsertEntity(e)
		assert.Equal(t, []string{e.ID}, snap.Snapshot().Entities)

		reg.RemoveEntity(e)
		assert.Empty(t, snap.Snapshot().Entities)
	})

	t.Run("Insert and Remove Light", func(t *testing.T) {
		reg := newRegistry()
		snap := reg.(Snapshotter)

		point := render.NewPointLight(math32.Vec4(1, 1, 1, 1))
		dir := render.NewDirectionalLight(math32.Vec3(0, -1, 0), math32.Vec4(1, 1, 1, 1))
		reg.InsertLight(point)
		reg.InsertLight(dir)
		assert.ElementsMatch(t, []string{point.ID, dir.ID}, snap.Snapshot().Lights)

		reg.RemoveLight(point)
		assert.Equal(t, []string{dir.ID}, snap.Snapshot().Lights)
	})

	t.Run("Registries are independent", func(t *testing.T) {
		a, b := newRegistry(), newRegistry()
		a.InsertEntity(render.NewEntity(render.EntityEmissive, render.MeshHandle{ID: "s"}))

		assert.Len(t, a.(Snapshotter).Snapshot().Entities, 1)
		assert.Empty(t, b.(Snapshotter).Snapshot().Entities)
	})
}
