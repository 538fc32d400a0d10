package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestWatchDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))

	old := WatchDebounce
	WatchDebounce = 10 * time.Millisecond
	defer func() { WatchDebounce = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchDocument(ctx, path, logging.NewNop(), func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Writes to siblings are ignored; keep writing the document until the watcher is up.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0600))
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-changed:
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("[ ]"), 0600))
		case <-ctx.Done():
			t.Fatal("no change reported")
		}
	}
}
