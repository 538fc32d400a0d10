package ports

import "context"

// DocumentStore exposes the primitive operations the save and load transactions are
// composed of. Paths are opaque to the editor: a filesystem path for the file store,
// a key for the redis and sqlite stores.
//
// Every failure must wrap domain.ErrIOFailure, except reads of missing documents which
// return domain.ErrDocumentNotFound.
type DocumentStore interface {
	// Read returns the document bytes.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write creates or replaces the document, creating parent locations as needed.
	Write(ctx context.Context, path string, data []byte) error

	// Exists reports whether a document is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Rename moves a document, replacing any document at the destination.
	Rename(ctx context.Context, from, to string) error

	// Remove deletes a document. Removing a missing document is not an error.
	Remove(ctx context.Context, path string) error

	// BackupPath returns an unused location suitable for parking the document at path
	// while it is being overwritten.
	BackupPath(ctx context.Context, path string) (string, error)
}
