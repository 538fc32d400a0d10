package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

const scene = `[{"label":"Group","name":"secret lair","position":[0,0,0],"rotation":[0,0,0],"scale":[1,1,1]}]`

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunDocumentStoreContract(t, mw(memory.NewStore()), "")
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Write(ctx, "lair.json", []byte(scene)))

	raw, err := underlying.Read(ctx, "lair.json")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret lair")
	assert.Contains(t, string(raw), "__encrypted__")

	plain, err := secure.Read(ctx, "lair.json")
	require.NoError(t, err)
	assert.Equal(t, scene, string(plain))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Write(ctx, "a.json", []byte(scene)))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	plain, err := newStore.Read(ctx, "a.json")
	require.NoError(t, err, "fallback key decrypts")
	assert.Equal(t, scene, string(plain))

	require.NoError(t, newStore.Write(ctx, "a.json", plain))
	_, err = oldStore.Read(ctx, "a.json")
	assert.ErrorIs(t, err, domain.ErrIOFailure, "old key alone cannot read new data")
}

func TestEncryptionMiddleware_RejectsPlainDocuments(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Write(ctx, "plain.json", []byte(scene)))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Read(ctx, "plain.json")
	assert.ErrorIs(t, err, domain.ErrIOFailure)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestEncryptionMiddleware_InvalidFallbackKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    make([]byte, 32),
			FallbackKeys: [][]byte{[]byte("short")},
		})
	})
}

func TestEncryptionMiddleware_TamperedCiphertext(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	require.NoError(t, underlying.Write(ctx, "short.json", []byte(`{"__encrypted__": "AAAA"}`)))
	_, err := secure.Read(ctx, "short.json")
	assert.ErrorIs(t, err, domain.ErrIOFailure, "shorter than a nonce")

	require.NoError(t, secure.Write(ctx, "doc.json", []byte(scene)))
	raw, err := underlying.Read(ctx, "doc.json")
	require.NoError(t, err)
	var env map[string]string
	require.NoError(t, json.Unmarshal(raw, &env))
	sealed, err := base64.StdEncoding.DecodeString(env["__encrypted__"])
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff
	env["__encrypted__"] = base64.StdEncoding.EncodeToString(sealed)
	raw, err = json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, underlying.Write(ctx, "doc.json", raw))

	_, err = secure.Read(ctx, "doc.json")
	assert.ErrorIs(t, err, domain.ErrIOFailure)
}
