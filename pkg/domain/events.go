package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommand    EventType = "command"
	EventCreate     EventType = "element_create"
	EventSave       EventType = "scene_save"
	EventLoad       EventType = "scene_load"
	EventDiagnostic EventType = "diagnostic"
	EventCommit     EventType = "commit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// CommandEvent reports the outcome of one editor command.
type CommandEvent struct {
	EventBase
	Command string `json:"command"`
	Outcome string `json:"outcome"` // domain.Classify of the command error
}

// CreateEvent reports an element created through the type registry.
type CreateEvent struct {
	EventBase
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

// PersistEvent reports a finished save or load transaction.
type PersistEvent struct {
	EventBase
	Path        string `json:"path"`
	Elements    int    `json:"elements"`
	Diagnostics int    `json:"diagnostics"`
	Err         error  `json:"-"`
}

// DiagnosticEvent reports a node skipped during load or flagged during save.
type DiagnosticEvent struct {
	EventBase
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Msg   string `json:"msg"`
}

// RenderSnapshot is the render registry membership at a point in time.
type RenderSnapshot struct {
	Entities []string `json:"entities"`
	Lights   []string `json:"lights"`
}

// CommitEvent is fired after a command leaves the editor in a consistent state.
// Transactions that roll back do not fire it.
type CommitEvent struct {
	EventBase
	Command string         `json:"command"`
	Path    string         `json:"path,omitempty"`
	Render  RenderSnapshot `json:"render"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnCommand    func(context.Context, *CommandEvent)
	OnCreate     func(context.Context, *CreateEvent)
	OnSave       func(context.Context, *PersistEvent)
	OnLoad       func(context.Context, *PersistEvent)
	OnDiagnostic func(context.Context, *DiagnosticEvent)
	OnCommit     func(context.Context, *CommitEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommand:    chain(h.OnCommand, other.OnCommand),
		OnCreate:     chain(h.OnCreate, other.OnCreate),
		OnSave:       chain(h.OnSave, other.OnSave),
		OnLoad:       chain(h.OnLoad, other.OnLoad),
		OnDiagnostic: chain(h.OnDiagnostic, other.OnDiagnostic),
		OnCommit:     chain(h.OnCommit, other.OnCommit),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
