package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
)

// ShutdownContext is cancelled by SIGINT or SIGTERM, or by Stop, and remembers the signal
// that ended it.
type ShutdownContext struct {
	context.Context
	cancel context.CancelFunc
	sig    atomic.Value
}

// NewShutdownContext starts listening for termination signals until the context ends.
func NewShutdownContext(parent context.Context) *ShutdownContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &ShutdownContext{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.sig.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Stop cancels the context and releases the signal handler.
func (sc *ShutdownContext) Stop() { sc.cancel() }

// Signal returns the signal that ended the context, or nil.
func (sc *ShutdownContext) Signal() os.Signal {
	sig, _ := sc.sig.Load().(os.Signal)
	return sig
}

// LoadConfig reads the config file and applies the --log-level flag when set.
func LoadConfig(path, logLevel string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// CreateLogger configures the application logger. Quiet commands only log warnings.
func CreateLogger(cfg config.LoggingConfig, quiet bool) *slog.Logger {
	if quiet && logging.ParseLevel(cfg.Level) < slog.LevelWarn {
		cfg.Level = "warn"
	}
	return logging.FromConfig(cfg.Level, cfg.Format)
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
