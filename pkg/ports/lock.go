package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by a DocumentLocker.
type UnlockFunc func(ctx context.Context) error

// DocumentLocker is implemented by shared stores that several editors may write to.
// The save transaction holds the lock of the document path from backup to cleanup.
type DocumentLocker interface {
	Lock(ctx context.Context, path string, ttl time.Duration) (UnlockFunc, error)
}
