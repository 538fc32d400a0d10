package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_StripsAssetDirectories(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.NewRedactionMiddleware([]string{"model$", "_texture$"}, middleware.StripDirs)(underlying)
	ctx := context.Background()

	doc := []byte(`[{"label":"Group","name":"g","children":[
		{"label":"Entity","name":"robot","model":"/home/alice/assets/robot.glb",
		 "diffuse_texture":"/home/alice/assets/skin.png","specular_texture":""}
	]}]`)
	require.NoError(t, store.Write(ctx, "s.json", doc))

	raw, err := underlying.Read(ctx, "s.json")
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	child := out[0]["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "robot.glb", child["model"])
	assert.Equal(t, "skin.png", child["diffuse_texture"])
	assert.Equal(t, "", child["specular_texture"])
	assert.Equal(t, "robot", child["name"])
}

func TestRedactionMiddleware_MasksAndChains(t *testing.T) {
	underlying := memory.NewStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewRedactionMiddleware([]string{"^name$"}, nil),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "s.json", []byte(scene)))

	plain, err := store.Read(ctx, "s.json")
	require.NoError(t, err)
	assert.Contains(t, string(plain), `"name": "***"`)
	assert.NotContains(t, string(plain), "secret lair")

	err = store.Write(ctx, "bad.json", []byte("not json"))
	assert.ErrorIs(t, err, domain.ErrIOFailure)
}
