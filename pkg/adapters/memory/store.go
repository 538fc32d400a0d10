package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Read returns a copy of the document.
func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrDocumentNotFound)
	}
	// Copy on read so callers can't mutate store state through the slice
	return append([]byte(nil), data...), nil
}

// Write stores a copy of data.
func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	copied := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = copied
	return nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[path]
	return ok, nil
}

func (s *Store) Rename(ctx context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[from]
	if !ok {
		return fmt.Errorf("failed to rename %s: %w", from, domain.ErrIOFailure)
	}
	delete(s.data, from)
	s.data[to] = data
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, path)
	return nil
}

// BackupPath returns path with a ".bak" suffix, numbered when that is taken.
func (s *Store) BackupPath(ctx context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidate := path + ".bak"
	for i := 1; ; i++ {
		if _, ok := s.data[candidate]; !ok {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.bak%d", path, i)
	}
}

// Paths returns every stored document path.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.data))
	for p := range s.data {
		paths = append(paths, p)
	}
	return paths
}
