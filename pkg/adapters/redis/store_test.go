package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunDocumentStoreContract(t, store, "")
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "scene.json", []byte("[]")))

	paths, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, paths, "scene.json")

	mr.FastForward(2 * time.Second)

	_, err = store.Read(ctx, "scene.json")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "levels/one.json", []byte("[]")))

	assert.True(t, mr.Exists("custom:app:doc:levels/one.json"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	require.NoError(t, store.Rename(ctx, "levels/one.json", "levels/two.json"))
	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"levels/two.json"}, list)
}

func TestRedisLocker(t *testing.T) {
	_, client := newClient(t)
	redis.LockPollInterval = 10 * time.Millisecond
	store := redis.NewFromClient(client)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "scene.json", time.Minute)
	require.NoError(t, err)

	busy, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = store.Lock(busy, "scene.json", time.Minute)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)

	require.NoError(t, unlock(ctx))

	unlock, err = store.Lock(ctx, "scene.json", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}
