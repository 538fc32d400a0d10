// Package config loads the arbor configuration from YAML with ARBOR_* environment overrides.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Asset sources.
const (
	AssetsDir     = "dir"
	AssetsCatalog = "catalog"
)

// Config is the root configuration structure.
type Config struct {
	Editor     EditorConfig     `yaml:"editor"`
	Store      StoreConfig      `yaml:"store"`
	Assets     AssetsConfig     `yaml:"assets"`
	RenderSync RenderSyncConfig `yaml:"render_sync"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EditorConfig holds editor session settings.
type EditorConfig struct {
	// Document is opened at startup when set; otherwise the default scene is seeded.
	Document string `yaml:"document"`
}

// StoreConfig selects where scene documents live.
type StoreConfig struct {
	Backend string       `yaml:"backend"`
	Dir     string       `yaml:"dir"`
	Redis   RedisConfig  `yaml:"redis"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	// EncryptionKey is a base64 AES-256 key. Documents are sealed when it is set.
	EncryptionKey string `yaml:"encryption_key"`
	// RedactAssetDirs strips local directories from model and texture references on save.
	RedactAssetDirs bool `yaml:"redact_asset_dirs"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	// TTL in seconds; 0 keeps documents forever.
	TTL int `yaml:"ttl"`
}

// SQLiteConfig contains SQLite database settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// AssetsConfig selects the model and texture provider.
type AssetsConfig struct {
	Source string `yaml:"source"`
	Dir    string `yaml:"dir"`
	// Models are extra names the catalog source accepts.
	Models []string `yaml:"models"`
}

// RenderSyncConfig configures the MQTT render-sync bridge.
type RenderSyncConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
}

// HTTPConfig configures the HTTP surface.
type HTTPConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
	// ShutdownTimeout in seconds.
	ShutdownTimeout int `yaml:"shutdown_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults: file documents in the working
// directory, built-in models only, no render sync.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: StoreFile,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "arbor:scene:",
			},
			SQLite: SQLiteConfig{
				Path: "./data/arbor.db",
			},
		},
		Assets: AssetsConfig{
			Source: AssetsCatalog,
		},
		RenderSync: RenderSyncConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "arbor-editor",
			Topic:    "arbor",
			QoS:      1,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			Metrics:         true,
			ShutdownTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies ARBOR_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ARBOR_DOCUMENT"); v != "" {
		cfg.Editor.Document = v
	}

	// Store
	if v := os.Getenv("ARBOR_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("ARBOR_STORE_DIR"); v != "" {
		cfg.Store.Dir = v
	}
	if v := os.Getenv("ARBOR_REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("ARBOR_REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}
	if v := os.Getenv("ARBOR_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Store.Redis.DB = n
		}
	}
	if v := os.Getenv("ARBOR_SQLITE_PATH"); v != "" {
		cfg.Store.SQLite.Path = v
	}
	// Keys never belong in a committed config file.
	if v := os.Getenv("ARBOR_ENCRYPTION_KEY"); v != "" {
		cfg.Store.EncryptionKey = v
	}

	// Assets
	if v := os.Getenv("ARBOR_ASSETS_DIR"); v != "" {
		cfg.Assets.Source = AssetsDir
		cfg.Assets.Dir = v
	}

	// Render sync
	if v := os.Getenv("ARBOR_MQTT_BROKER"); v != "" {
		cfg.RenderSync.Enabled = true
		cfg.RenderSync.Broker = v
	}
	if v := os.Getenv("ARBOR_MQTT_USERNAME"); v != "" {
		cfg.RenderSync.Username = v
	}
	if v := os.Getenv("ARBOR_MQTT_PASSWORD"); v != "" {
		cfg.RenderSync.Password = v
	}

	if v := os.Getenv("ARBOR_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ARBOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ARBOR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Backend {
	case StoreFile, StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, "store.redis.addr is required for the redis backend")
		}
		if c.Store.Redis.TTL < 0 {
			errs = append(errs, "store.redis.ttl must not be negative")
		}
	case StoreSQLite:
		if c.Store.SQLite.Path == "" {
			errs = append(errs, "store.sqlite.path is required for the sqlite backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.backend %q must be one of file, memory, redis, sqlite", c.Store.Backend))
	}

	if c.Store.EncryptionKey != "" {
		if key, err := c.Store.Key(); err != nil || len(key) != 32 {
			errs = append(errs, "store.encryption_key must be 32 bytes, base64 encoded")
		}
	}

	switch c.Assets.Source {
	case AssetsCatalog:
	case AssetsDir:
		if c.Assets.Dir == "" {
			errs = append(errs, "assets.dir is required for the dir source")
		}
	default:
		errs = append(errs, fmt.Sprintf("assets.source %q must be dir or catalog", c.Assets.Source))
	}

	if c.RenderSync.Enabled {
		if c.RenderSync.Broker == "" {
			errs = append(errs, "render_sync.broker is required when render sync is enabled")
		}
		if c.RenderSync.QoS < 0 || c.RenderSync.QoS > 2 {
			errs = append(errs, "render_sync.qos must be 0, 1, or 2")
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Key decodes the encryption key.
func (s StoreConfig) Key() ([]byte, error) {
	return base64.StdEncoding.DecodeString(s.EncryptionKey)
}

// RedisTTL returns the document TTL as a Duration.
func (r RedisConfig) RedisTTL() time.Duration {
	return time.Duration(r.TTL) * time.Second
}

// GetShutdownTimeout returns the HTTP shutdown timeout as a Duration.
func (h HTTPConfig) GetShutdownTimeout() time.Duration {
	return time.Duration(h.ShutdownTimeout) * time.Second
}
