package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// TerminalDialog answers save and open prompts on a line-oriented terminal. Without an
// input it cancels every prompt, which makes it safe for servers.
type TerminalDialog struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewTerminalDialog prompts on out and reads answers from in. A nil in disables prompting.
func NewTerminalDialog(in io.Reader, out io.Writer, logger *slog.Logger) *TerminalDialog {
	d := &TerminalDialog{out: out, logger: logger}
	if in != nil {
		d.in = bufio.NewReader(in)
	}
	if d.out == nil {
		d.out = io.Discard
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// SavePath prompts for a save path; an empty answer accepts the suggestion.
func (d *TerminalDialog) SavePath(ctx context.Context, suggested string) (string, bool) {
	return d.ask(ctx, "Save as", suggested)
}

// OpenPath prompts for a document to open; an empty answer accepts the suggestion.
func (d *TerminalDialog) OpenPath(ctx context.Context, suggested string) (string, bool) {
	return d.ask(ctx, "Open", suggested)
}

// NotifyError prints the error and logs it.
func (d *TerminalDialog) NotifyError(ctx context.Context, title, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "!!! %s: %s\n", title, msg)
	d.logger.ErrorContext(ctx, title, "msg", msg)
}

func (d *TerminalDialog) ask(ctx context.Context, prompt, suggested string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.in == nil || ctx.Err() != nil {
		return "", false
	}
	fmt.Fprintf(d.out, "%s [%s]: ", prompt, suggested)
	line, err := d.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		// EOF or a closed terminal is a cancel.
		return "", false
	}
	if line == "" {
		return suggested, true
	}
	return line, true
}
