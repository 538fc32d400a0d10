package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.DocumentStore using the local filesystem.
// Relative document paths are resolved against BasePath.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, paths are used as given.
func New(basePath string) *Store {
	return &Store{BasePath: basePath}
}

func (s *Store) resolve(path string) string {
	if s.BasePath == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.BasePath, path)
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to read scene file: %w: %v", domain.ErrIOFailure, err)
	}
	return data, nil
}

// Write stores data at path through a synced temporary file in the same directory, so a
// crash never leaves a truncated document behind.
func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	dest := s.resolve(path)
	dir := filepath.Dir(dest)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure scene directory: %w: %v", domain.ErrIOFailure, err)
	}

	// Same directory keeps the final rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w: %v", domain.ErrIOFailure, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w: %v", domain.ErrIOFailure, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w: %v", domain.ErrIOFailure, err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w: %v", domain.ErrIOFailure, err)
	}
	return s.replace(tmpPath, dest)
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(s.resolve(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w: %v", path, domain.ErrIOFailure, err)
	}
}

func (s *Store) Rename(ctx context.Context, from, to string) error {
	dest := s.resolve(to)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to ensure scene directory: %w: %v", domain.ErrIOFailure, err)
	}
	return s.replace(s.resolve(from), dest)
}

// replace renames src over dest. On Windows os.Rename fails if dest exists, so it is
// removed first; the gap is covered by the editor's backup.
func (s *Store) replace(src, dest string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("failed to rename %s: %w: %v", src, domain.ErrIOFailure, err)
	}
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove %s for overwrite: %w: %v", dest, domain.ErrIOFailure, err)
		}
	}
	if err := os.Rename(src, dest); err != nil {
		return fmt.Errorf("failed to rename %s: %w: %v", src, domain.ErrIOFailure, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	err := os.Remove(s.resolve(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w: %v", path, domain.ErrIOFailure, err)
	}
	return nil
}

// BackupPath returns an unused sibling of path, so parking the document is a same-directory
// rename.
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
	return "", fmt.Errorf("no free backup name for %s: %w", path, domain.ErrIOFailure)
}

// List returns the scene documents (".json" files) directly under BasePath.
func (s *Store) List(ctx context.Context) ([]string, error) {
	base := s.BasePath
	if base == "" {
		base = "."
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list scenes: %w: %v", domain.ErrIOFailure, err)
	}

	var scenes []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			scenes = append(scenes, entry.Name())
		}
	}
	return scenes, nil
}
