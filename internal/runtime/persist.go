package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/scene"
)

// saveLockTTL bounds how long a crashed editor can keep a shared document locked.
const saveLockTTL = 30 * time.Second

// Save writes the tree to the current path, prompting for one when unset.
// It returns domain.ErrNoSavePath when the prompt is cancelled; nothing is touched then.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	path := e.path
	if path == "" {
		var ok bool
		if path, ok = e.dialog.SavePath(ctx, DefaultDocumentName); !ok || path == "" {
			e.logger.InfoContext(ctx, "save cancelled")
			return domain.ErrNoSavePath
		}
	}
	return e.save(ctx, "save", path)
}

// SaveAs writes the tree to path, which becomes the current path on success.
// An empty path prompts for one.
func (e *Editor) SaveAs(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if path == "" {
		var ok bool
		if path, ok = e.dialog.SavePath(ctx, e.suggestedPath()); !ok || path == "" {
			e.logger.InfoContext(ctx, "save cancelled")
			return domain.ErrNoSavePath
		}
	}
	return e.save(ctx, "save_as", path)
}

func (e *Editor) suggestedPath() string {
	if e.path != "" {
		return e.path
	}
	return DefaultDocumentName
}

// save parks any existing document at a backup location, writes the new one and drops the
// backup. Any failure restores the original document and path.
func (e *Editor) save(ctx context.Context, command, path string) error {
	oldPath := e.path
	e.path = path

	report, err := e.writeDocument(ctx, path)
	if err != nil {
		e.path = oldPath
		e.logger.ErrorContext(ctx, "failed to save scene", "path", path, "error", err)
		e.dialog.NotifyError(ctx, "Failed to save to File", err.Error())
	}

	e.emitPersist(ctx, e.hooks.OnSave, domain.EventSave, path, report, err)
	e.finish(ctx, command, err)
	return err
}

func (e *Editor) writeDocument(ctx context.Context, path string) (*persistence.Report, error) {
	if locker, ok := e.store.(ports.DocumentLocker); ok {
		unlock, err := locker.Lock(ctx, path, saveLockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w: %v", path, domain.ErrIOFailure, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				e.logger.WarnContext(ctx, "failed to release document lock", "path", path, "error", err)
			}
		}()
	}

	existed, err := e.store.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	backup := ""
	if existed {
		if backup, err = e.store.BackupPath(ctx, path); err != nil {
			return nil, err
		}
		if err := e.store.Rename(ctx, path, backup); err != nil {
			return nil, fmt.Errorf("failed to back up %s: %w", path, err)
		}
	}

	data, report, err := e.codec.Marshal(e.tree.Root())
	if err == nil {
		err = e.store.Write(ctx, path, data)
	}
	if err != nil {
		// The original is safe at backup, so whatever is at path is ours to remove.
		if rmErr := e.store.Remove(ctx, path); rmErr != nil {
			e.logger.WarnContext(ctx, "failed to remove partial document", "path", path, "error", rmErr)
		}
		if backup != "" {
			if rbErr := e.store.Rename(ctx, backup, path); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to restore backup %s: %w", backup, rbErr))
			}
		}
		return report, err
	}

	if backup != "" {
		if err := e.store.Remove(ctx, backup); err != nil {
			e.logger.WarnContext(ctx, "failed to remove backup", "path", backup, "error", err)
		}
	}
	return report, nil
}

// Load replaces the tree with the document at path, prompting for one when empty.
// Any failure restores the previous tree, render registry, path and selection.
func (e *Editor) Load(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if path == "" {
		var ok bool
		if path, ok = e.dialog.OpenPath(ctx, e.suggestedPath()); !ok || path == "" {
			e.logger.InfoContext(ctx, "load cancelled")
			return domain.ErrNoSavePath
		}
	}

	oldTree, oldRender, oldPath, oldSelection := e.tree, e.render, e.path, e.selection.Snapshot()
	e.tree = scene.NewTree()
	e.render = e.newRender()
	e.selection.Clear()
	e.path = path

	report, err := e.readDocument(ctx, path)
	if err != nil {
		e.tree, e.render, e.path, e.selection = oldTree, oldRender, oldPath, oldSelection
		e.logger.ErrorContext(ctx, "failed to load scene", "path", path, "error", err)
		e.dialog.NotifyError(ctx, "Failed to open File", err.Error())
	}

	e.emitPersist(ctx, e.hooks.OnLoad, domain.EventLoad, path, report, err)
	e.finish(ctx, "load", err)
	return err
}

func (e *Editor) readDocument(ctx context.Context, path string) (*persistence.Report, error) {
	data, err := e.store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.codec.Unmarshal(e.sc, data, e.tree.Root(), e.render)
}

func (e *Editor) emitPersist(ctx context.Context, hook func(context.Context, *domain.PersistEvent), t domain.EventType, path string, report *persistence.Report, err error) {
	if report == nil {
		report = &persistence.Report{}
	}
	if e.hooks.OnDiagnostic != nil {
		for _, d := range report.Diagnostics {
			e.hooks.OnDiagnostic(ctx, &domain.DiagnosticEvent{
				EventBase: e.event(domain.EventDiagnostic),
				Kind:      d.Kind,
				Label:     d.Label,
				Msg:       d.Err.Error(),
			})
		}
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.PersistEvent{
		EventBase:   e.event(t),
		Path:        path,
		Elements:    report.Elements,
		Diagnostics: len(report.Diagnostics),
		Err:         err,
	})
}
