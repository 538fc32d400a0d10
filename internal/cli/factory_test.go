package cli

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
}

func (r *recorder) Publish(topic string, _ byte, _ bool, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

func newSession(t *testing.T, cfg *config.Config, opts BuildOptions) *Session {
	t.Helper()
	require.NoError(t, cfg.Validate())
	s, err := NewSession(context.Background(), cfg, logging.NewNop(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSession_FileStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Dir = t.TempDir()

	s := newSession(t, cfg, BuildOptions{})
	ctx := context.Background()

	assert.Len(t, s.Editor.Hierarchy(), 2)
	require.NoError(t, s.Editor.SaveAs(ctx, "a.json"))
	assert.FileExists(t, filepath.Join(cfg.Store.Dir, "a.json"))

	n, err := testutil.GatherAndCount(s.Registry, "arbor_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "open and save_as series")
}

func TestNewSession_LoadsConfiguredDocument(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Dir = t.TempDir()

	first := newSession(t, cfg, BuildOptions{})
	_, err := first.Editor.Create(context.Background(), domain.TagGroup)
	require.NoError(t, err)
	require.NoError(t, first.Editor.SaveAs(context.Background(), "scene.json"))

	cfg.Editor.Document = "scene.json"
	second := newSession(t, cfg, BuildOptions{})
	assert.Len(t, second.Editor.Hierarchy(), 3)
	assert.Equal(t, "scene.json", second.Editor.Path())

	fresh := newSession(t, cfg, BuildOptions{Fresh: true})
	assert.Len(t, fresh.Editor.Hierarchy(), 2)
}

func TestNewSession_MissingDocumentFails(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Dir = t.TempDir()
	cfg.Editor.Document = "nope.json"

	_, err := NewSession(context.Background(), cfg, logging.NewNop(), BuildOptions{})
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestNewSession_EncryptedAndRedacted(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Dir = t.TempDir()
	cfg.Store.RedactAssetDirs = true
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	s := newSession(t, cfg, BuildOptions{})
	require.NoError(t, s.Editor.SaveAs(context.Background(), "sealed.json"))

	raw, err := os.ReadFile(filepath.Join(cfg.Store.Dir, "sealed.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "__encrypted__")
	assert.NotContains(t, string(raw), "Ground Plane")

	require.NoError(t, s.Editor.Load(context.Background(), "sealed.json"))
	assert.Len(t, s.Editor.Hierarchy(), 2)
}

func TestNewSession_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.StoreSQLite
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "arbor.db")

	s := newSession(t, cfg, BuildOptions{})
	require.NoError(t, s.Editor.SaveAs(context.Background(), "a.json"))
	require.NoError(t, s.Editor.Load(context.Background(), "a.json"))
}

func TestNewSession_RedisKeepsLocking(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store.Backend = config.StoreRedis
	cfg.Store.Redis.Addr = mr.Addr()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	store, closer, err := buildStore(cfg.Store)
	require.NoError(t, err)
	defer closer.Close()
	_, ok := store.(lockingStore)
	assert.True(t, ok, "the middleware chain must still expose the redis locker")

	s := newSession(t, cfg, BuildOptions{})
	require.NoError(t, s.Editor.SaveAs(context.Background(), "a.json"))
	assert.True(t, mr.Exists(cfg.Store.Redis.Prefix+"doc:a.json"))
}

func TestNewSession_RenderSync(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.StoreMemory
	cfg.RenderSync.Enabled = true
	pub := &recorder{}

	s := newSession(t, cfg, BuildOptions{Publisher: pub})
	_, err := s.Editor.Create(context.Background(), domain.TagPointLight)
	require.NoError(t, err)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, []string{"arbor/render", "arbor/render"}, pub.topics)
}

func TestNewSession_CatalogModels(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.StoreMemory
	cfg.Assets.Models = []string{"robot.glb"}

	s := newSession(t, cfg, BuildOptions{})
	ref, err := s.Editor.Create(context.Background(), domain.TagEntity)
	require.NoError(t, err)
	assert.NoError(t, s.Editor.Edit(context.Background(), ref, map[string]any{"model": "robot.glb"}))
	assert.Error(t, s.Editor.Edit(context.Background(), ref, map[string]any{"model": "teapot.glb"}))
}
