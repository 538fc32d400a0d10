package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces scene documents.
const DefaultPrefix = "arbor:scene:"

// farFuture scores index entries of documents without expiration (2100-01-01).
const farFuture = 4102444800

// Store implements ports.DocumentStore using Redis. Each document is one string key; a
// sorted set indexes the stored paths for List.
type Store struct {
	*Locker
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for documents.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for documents.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	store.Locker = NewLocker(client, store.prefix)
	return store
}

func (s *Store) key(path string) string {
	return s.prefix + "doc:" + path
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) score() float64 {
	if s.ttl == 0 {
		return farFuture
	}
	return float64(time.Now().Add(s.ttl).Unix())
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(path)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to get from redis: %w: %v", domain.ErrIOFailure, err)
	}
	return val, nil
}

func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(path), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.score(), Member: path})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w: %v", domain.ErrIOFailure, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(path)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check redis key: %w: %v", domain.ErrIOFailure, err)
	}
	return n > 0, nil
}

// Rename uses RENAME, which replaces the destination and keeps the source TTL.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	ok, err := s.Exists(ctx, from)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("failed to rename %s: no such document: %w", from, domain.ErrIOFailure)
	}

	pipe := s.client.TxPipeline()
	pipe.Rename(ctx, s.key(from), s.key(to))
	pipe.ZRem(ctx, s.indexKey(), from)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.score(), Member: to})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rename %s: %w: %v", from, domain.ErrIOFailure, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(path))
	pipe.ZRem(ctx, s.indexKey(), path)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w: %v", domain.ErrIOFailure, err)
	}
	return nil
}

// BackupPath returns path with a ".bak" suffix, numbered when that is taken.
func (s *Store) BackupPath(ctx context.Context, path string) (string, error) {
	candidate := path + ".bak"
	for i := 1; i < 1000; i++ {
		ok, err := s.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !ok {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.bak%d", path, i)
	}
	return "", fmt.Errorf("no free backup key for %s: %w", path, domain.ErrIOFailure)
}

// List returns the stored document paths.
// Entries of expired documents are pruned from the index lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired documents: %w: %v", domain.ErrIOFailure, err)
	}

	paths, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w: %v", domain.ErrIOFailure, err)
	}
	return paths, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
