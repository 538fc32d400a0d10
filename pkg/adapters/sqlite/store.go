// Package sqlite stores scene documents as rows of a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// busyTimeoutMS is how long a writer waits for the database lock.
	busyTimeoutMS = 5000
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store implements ports.DocumentStore on a SQLite database.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL", path, busyTimeoutMS)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

func ioFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrIOFailure, err)
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, ioFailure("reading document", err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		path, data, s.now().Unix())
	if err != nil {
		return ioFailure("writing document", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE path = ?`, path).Scan(&n); err != nil {
		return false, ioFailure("checking document", err)
	}
	return n > 0, nil
}

// Rename replaces any row at to with the row at from, in one transaction.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ioFailure("beginning rename", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if from != to {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, to); err != nil {
			return ioFailure("renaming document", err)
		}
	}
	res, err := tx.ExecContext(ctx, `UPDATE documents SET path = ? WHERE path = ?`, to, from)
	if err != nil {
		return ioFailure("renaming document", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return fmt.Errorf("failed to rename %s: no such document: %w", from, domain.ErrIOFailure)
	}
	if err := tx.Commit(); err != nil {
		return ioFailure("committing rename", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return ioFailure("removing document", err)
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
	return "", fmt.Errorf("no free backup path for %s: %w", path, domain.ErrIOFailure)
}

// List returns the stored document paths, most recently written first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM documents ORDER BY updated_at DESC, path`)
	if err != nil {
		return nil, ioFailure("listing documents", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, ioFailure("listing documents", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ioFailure("listing documents", err)
	}
	return paths, nil
}
