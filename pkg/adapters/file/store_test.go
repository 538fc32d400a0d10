package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	dir := t.TempDir()
	ports.RunDocumentStoreContract(t, file.New(dir), "")
}

func TestFileStore_AbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	ports.RunDocumentStoreContract(t, file.New(""), dir+string(filepath.Separator))
}

func TestFileStore_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "scene.json", []byte("[]")))
	require.NoError(t, store.Write(ctx, "scene.json", []byte("[ ]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scene.json", entries[0].Name())

	scenes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"scene.json"}, scenes)
}

func TestFileStore_BackupPathSkipsTakenNames(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "a.json", []byte("a")))
	require.NoError(t, store.Write(ctx, "a.json.bak", []byte("stale")))

	backup, err := store.BackupPath(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "a.json.bak1", backup)
}

func TestAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robot.glb"), []byte("glTF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bricks.png"), []byte("png"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "textures"), 0755))
	assets := file.NewAssets(dir)

	mesh, err := assets.LoadModel("robot.glb")
	require.NoError(t, err)
	assert.Equal(t, "robot.glb", mesh.Source)
	assert.True(t, mesh.Animated)

	cube, err := assets.LoadModel(domain.ModelCube)
	require.NoError(t, err, "built-in models need no file")
	assert.False(t, cube.Animated)

	_, err = assets.LoadModel("missing.obj")
	assert.ErrorIs(t, err, domain.ErrConstruction)
	_, err = assets.LoadModel("../escape.obj")
	assert.ErrorIs(t, err, domain.ErrConstruction)

	tex, err := assets.LoadTexture("bricks.png")
	require.NoError(t, err)
	assert.Equal(t, "bricks.png", tex.Source)

	_, err = assets.LoadTexture("textures")
	assert.ErrorIs(t, err, domain.ErrConstruction)
	assert.Empty(t, assets.DefaultWhite().Source)
}
