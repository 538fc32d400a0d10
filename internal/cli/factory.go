package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/file"
	httpadapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/mqtt"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/adapters/sqlite"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// assetKeys are the document fields holding model and texture paths.
var assetKeys = []string{`^model$`, `_texture$`}

// Session is an editor wired from configuration together with the infrastructure it owns.
type Session struct {
	Editor   *runtime.Editor
	Registry *prometheus.Registry
	Streams  *httpadapter.StreamManager

	closers []io.Closer
}

// Close releases every connection the session opened.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// BuildOptions adjusts what NewSession wires besides the configuration.
type BuildOptions struct {
	// Dialog answers save and open prompts. Defaults to a non-interactive TerminalDialog.
	Dialog ports.Dialog
	// Publisher replaces the MQTT connection of the render-sync bridge.
	Publisher mqtt.Publisher
	// Hooks are merged after the metrics, audit and stream hooks.
	Hooks domain.LifecycleHooks
	// Fresh skips opening the configured document.
	Fresh bool
}

// NewSession builds the store, asset provider, hooks and render-sync bridge named by cfg
// and opens an editor: the configured document when set, otherwise the default scene.
func NewSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*Session, error) {
	s := &Session{
		Registry: prometheus.NewRegistry(),
		Streams:  httpadapter.NewStreamManager(logger),
	}

	store, closer, err := buildStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	metrics := observability.NewMetrics(s.Registry)
	hooks := observability.AuditHooks(logger).
		Merge(metrics.Hooks()).
		Merge(s.Streams.Hooks())

	if cfg.RenderSync.Enabled {
		pub := opts.Publisher
		if pub == nil {
			client, err := mqtt.Connect(mqtt.Config{
				Broker:   cfg.RenderSync.Broker,
				ClientID: cfg.RenderSync.ClientID,
				Username: cfg.RenderSync.Username,
				Password: cfg.RenderSync.Password,
				Topic:    cfg.RenderSync.Topic,
				QoS:      byte(cfg.RenderSync.QoS),
			})
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("render sync: %w", err)
			}
			s.closers = append(s.closers, client)
			pub = client
		}
		bridge := mqtt.NewBridge(pub, cfg.RenderSync.Topic, byte(cfg.RenderSync.QoS), logger)
		hooks = hooks.Merge(bridge.Hooks())
	}

	hooks = hooks.Merge(opts.Hooks)

	dialog := opts.Dialog
	if dialog == nil {
		dialog = NewTerminalDialog(nil, nil, logger)
	}

	s.Editor = runtime.New(
		runtime.WithStore(store),
		runtime.WithResources(buildResources(cfg.Assets)),
		runtime.WithDialog(dialog),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithLogger(logger),
	)

	if cfg.Editor.Document != "" && !opts.Fresh {
		err = s.Editor.Load(ctx, cfg.Editor.Document)
	} else {
		err = s.Editor.Open(ctx)
	}
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// lockingStore keeps a locker visible through the middleware chain.
type lockingStore struct {
	ports.DocumentStore
	ports.DocumentLocker
}

func buildStore(cfg config.StoreConfig) (ports.DocumentStore, io.Closer, error) {
	var (
		store  ports.DocumentStore
		closer io.Closer
	)
	switch cfg.Backend {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.RedisTTL())}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		store, closer = rs, rs
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		store, closer = db, db
	default:
		store = file.New(cfg.Dir)
	}

	var mws []middleware.Middleware
	if cfg.RedactAssetDirs {
		mws = append(mws, middleware.NewRedactionMiddleware(assetKeys, middleware.StripDirs))
	}
	if cfg.EncryptionKey != "" {
		key, err := cfg.Key()
		if err != nil || len(key) != 32 {
			if closer != nil {
				closer.Close()
			}
			return nil, nil, fmt.Errorf("store encryption key: %w", domain.ErrIOFailure)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	if len(mws) == 0 {
		return store, closer, nil
	}

	chained := middleware.Chain(store, mws...)
	if locker, ok := store.(ports.DocumentLocker); ok {
		chained = lockingStore{DocumentStore: chained, DocumentLocker: locker}
	}
	return chained, closer, nil
}

func buildResources(cfg config.AssetsConfig) ports.ResourceProvider {
	if cfg.Source == config.AssetsDir {
		return file.NewAssets(cfg.Dir)
	}
	return memory.NewCatalog(cfg.Models...)
}
