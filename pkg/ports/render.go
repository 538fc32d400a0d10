package ports

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/render"
)

// RenderRegistry is the render scene elements register their resources with.
// Idempotency and duplicate handling are the registry's business; the tree calls each
// method exactly once per logical transition.
type RenderRegistry interface {
	InsertEntity(e *render.Entity)
	RemoveEntity(e *render.Entity)
	InsertLight(l render.Light)
	RemoveLight(l render.Light)
}

// Snapshotter is implemented by registries that can report their membership.
type Snapshotter interface {
	Snapshot() domain.RenderSnapshot
}

// RenderRegistryFactory creates an empty registry. The load transaction uses it to build
// the replacement render scene.
type RenderRegistryFactory func() RenderRegistry
