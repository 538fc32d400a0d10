package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// AuditHooks logs every lifecycle event. Commands and commits go to Debug, persistence
// to Info, and failures and diagnostics to Warn.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			level := slog.LevelDebug
			if e.Outcome != "ok" {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "command", "command", e.Command, "outcome", e.Outcome)
		},
		OnCreate: func(ctx context.Context, e *domain.CreateEvent) {
			logger.InfoContext(ctx, "element_create", "tag", e.Tag, "name", e.Name)
		},
		OnSave: func(ctx context.Context, e *domain.PersistEvent) {
			persisted(ctx, logger, "scene_save", e)
		},
		OnLoad: func(ctx context.Context, e *domain.PersistEvent) {
			persisted(ctx, logger, "scene_load", e)
		},
		OnDiagnostic: func(ctx context.Context, e *domain.DiagnosticEvent) {
			logger.WarnContext(ctx, "diagnostic", "kind", e.Kind, "label", e.Label, "msg", e.Msg)
		},
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.DebugContext(ctx, "commit",
				"command", e.Command,
				"entities", len(e.Render.Entities),
				"lights", len(e.Render.Lights),
			)
		},
	}
}

func persisted(ctx context.Context, logger *slog.Logger, msg string, e *domain.PersistEvent) {
	if e.Err != nil {
		logger.WarnContext(ctx, msg, "path", e.Path, "error", e.Err)
		return
	}
	logger.InfoContext(ctx, msg,
		"path", e.Path,
		"elements", e.Elements,
		"diagnostics", e.Diagnostics,
	)
}
