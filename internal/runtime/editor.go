package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/elements"
	"github.com/aretw0/arbor/pkg/persistence"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/scene"
)

// DefaultDocumentName is suggested by the save and open prompts.
const DefaultDocumentName = "scene.json"

// Editor owns the scene tree, the selection and the live render registry, and runs every
// command against them. Commands are serialized by a mutex; hooks run while it is held and
// must not call back into the editor.
type Editor struct {
	mu sync.Mutex

	registry  *registry.Registry
	codec     *persistence.Codec
	sc        *scene.Context
	store     ports.DocumentStore
	dialog    ports.Dialog
	newRender ports.RenderRegistryFactory
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time

	tree      *scene.Tree
	render    ports.RenderRegistry
	selection scene.Selection
	path      string
}

// Option configures an Editor.
type Option func(*Editor)

// WithRegistry sets the type registry. Defaults to the built-in variants.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Editor) { e.registry = r }
}

// WithResources sets the model and texture provider handed to element factories.
func WithResources(res ports.ResourceProvider) Option {
	return func(e *Editor) { e.sc.Resources = res }
}

// WithStore sets where documents are saved and loaded.
func WithStore(s ports.DocumentStore) Option {
	return func(e *Editor) { e.store = s }
}

// WithDialog sets the save/open prompts and error notifications.
func WithDialog(d ports.Dialog) Option {
	return func(e *Editor) { e.dialog = d }
}

// WithRenderFactory sets how empty render registries are made.
func WithRenderFactory(f ports.RenderRegistryFactory) Option {
	return func(e *Editor) { e.newRender = f }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) { e.hooks = hooks }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) { e.logger = logger }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// New creates an editor with an empty tree. Without options it keeps documents in memory,
// loads only the built-in models and renders into a memory.RenderScene.
func New(opts ...Option) *Editor {
	e := &Editor{
		sc:  &scene.Context{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.registry == nil {
		e.registry = elements.NewRegistry()
	}
	if e.sc.Resources == nil {
		e.sc.Resources = memory.NewCatalog()
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.dialog == nil {
		e.dialog = memory.NewDialog()
	}
	if e.newRender == nil {
		e.newRender = func() ports.RenderRegistry { return memory.NewRenderScene() }
	}
	e.sc.Logger = e.logger
	e.codec = persistence.NewCodec(e.registry, persistence.WithLogger(e.logger))
	e.tree = scene.NewTree()
	e.render = e.newRender()
	return e
}

// Open seeds the default scene: a ground plane and a point light.
func (e *Editor) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	els, err := elements.DefaultScene(e.sc)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build default scene", "error", err)
		e.finish(ctx, "open", err)
		return err
	}
	for _, el := range els {
		ref := e.tree.Root().PushBack(el)
		scene.UpdateSubtree(ref)
		el.AddToRenderScene(e.render)
	}
	e.finish(ctx, "open", nil)
	return nil
}

// Close unregisters every enabled element, then drops the tree, the selection and the
// document path. The editor can be reopened.
func (e *Editor) Close(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tree.Walk(func(r *scene.Ref, _ int) bool {
		if el := r.Element(); el.AsBase().Enabled {
			el.RemoveFromRenderScene(e.render)
		}
		return true
	})
	e.tree.Root().Clear()
	e.selection.Clear()
	e.render = e.newRender()
	e.path = ""
	e.finish(ctx, "close", nil)
}

// Tree returns the live tree. Callers must not mutate it outside editor commands.
func (e *Editor) Tree() *scene.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// Render returns the live render registry.
func (e *Editor) Render() ports.RenderRegistry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.render
}

// Selection returns a copy of the selection.
func (e *Editor) Selection() *scene.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	sel := e.selection.Snapshot()
	return &sel
}

// Path returns the current document path, empty until the first save or load.
func (e *Editor) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// Title is the window title suffix naming the open document.
func (e *Editor) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.path == "" {
		return ""
	}
	return "Open File: [" + e.path + "]"
}

// Resolve returns the reference of the element with the given ID.
func (e *Editor) Resolve(id string) (*scene.Ref, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.tree.Find(id)
	return r, r != nil
}

// Snapshot reports the render registry membership, when the registry supports it.
func (e *Editor) Snapshot() domain.RenderSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Editor) snapshot() domain.RenderSnapshot {
	if s, ok := e.render.(ports.Snapshotter); ok {
		return s.Snapshot()
	}
	return domain.RenderSnapshot{}
}

// finish reports a command outcome and, when it succeeded, commits the render state.
func (e *Editor) finish(ctx context.Context, command string, err error) {
	if e.hooks.OnCommand != nil {
		e.hooks.OnCommand(ctx, &domain.CommandEvent{
			EventBase: e.event(domain.EventCommand),
			Command:   command,
			Outcome:   domain.Classify(err),
		})
	}
	if err != nil || e.hooks.OnCommit == nil {
		return
	}
	e.hooks.OnCommit(ctx, &domain.CommitEvent{
		EventBase: e.event(domain.EventCommit),
		Command:   command,
		Path:      e.path,
		Render:    e.snapshot(),
	})
}

func (e *Editor) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t}
}

// contains reports whether r denotes a live element of the current tree.
func (e *Editor) contains(r *scene.Ref) bool {
	return e.tree.Contains(r)
}
