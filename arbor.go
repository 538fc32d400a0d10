package arbor

import (
	"context"
	_ "embed"

	"github.com/aretw0/arbor/internal/runtime"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Editor owns a scene tree, its selection and the render registry, and runs every
// editing command against them.
type Editor = runtime.Editor

// Option configures an Editor.
type Option = runtime.Option

// InsertPoint locates a position in the tree for Move.
type InsertPoint = runtime.InsertPoint

var (
	// WithRegistry sets the type registry. Defaults to the six built-in variants.
	WithRegistry = runtime.WithRegistry
	// WithResources sets the model and texture provider.
	WithResources = runtime.WithResources
	// WithStore sets where documents are saved and loaded.
	WithStore = runtime.WithStore
	// WithDialog sets the save/open prompts and error notifications.
	WithDialog = runtime.WithDialog
	// WithRenderFactory sets how empty render registries are made.
	WithRenderFactory = runtime.WithRenderFactory
	// WithLifecycleHooks registers observability hooks.
	WithLifecycleHooks = runtime.WithLifecycleHooks
	// WithLogger sets the structured logger.
	WithLogger = runtime.WithLogger
)

// New creates an editor with an empty tree. Without options documents are kept in memory,
// only the built-in models load and rendering goes to an in-process registry.
func New(opts ...Option) *Editor {
	return runtime.New(opts...)
}

// Open creates an editor and seeds the default scene: a ground plane and a point light.
func Open(ctx context.Context, opts ...Option) (*Editor, error) {
	e := runtime.New(opts...)
	if err := e.Open(ctx); err != nil {
		return nil, err
	}
	return e, nil
}
