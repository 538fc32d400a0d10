package scene

import (
	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/google/uuid"
)

// Element is a node of the scene tree. Variants embed Base and implement the rest.
type Element interface {
	// AsBase returns the Base holding the state shared by every variant.
	AsBase() *Base

	// Children returns the owned child list of container variants, nil for leaves.
	Children() *List

	// UpdateInstanceData recomputes the world transform and derived render parameters from
	// the local parameters and the parent's world transform. The parent must be up to date.
	UpdateInstanceData()

	// IntoJSON serializes the element's own local fields, without children or derived state.
	IntoJSON() map[string]any

	// StoreJSON augments a serialized object. It may add an "error" key when the element
	// cannot be captured losslessly.
	StoreJSON(j map[string]any)

	// LoadJSON hydrates extra state after construction from a serialized object.
	LoadJSON(j map[string]any) error

	// ApplyFields decodes a partial field set onto the element, rejecting unknown keys.
	// The element is unchanged when an error is returned.
	ApplyFields(fields map[string]any) error

	// AddToRenderScene registers this element's own render resources, not its descendants'.
	AddToRenderScene(reg ports.RenderRegistry)

	// RemoveFromRenderScene deregisters this element's own render resources.
	RemoveFromRenderScene(reg ports.RenderRegistry)

	// TypeName returns the type tag of the variant.
	TypeName() string
}

// Base carries the state shared by all variants.
type Base struct {
	// ID is a session-local handle used by remote surfaces to address the element.
	// It is never persisted.
	ID      string
	Name    string
	Enabled bool

	// World is the derived world transform; recomputed, never persisted.
	World math32.Matrix4

	parent *Ref
}

// NewBase returns an enabled Base with a fresh ID and identity world transform.
func NewBase(parent *Ref, name string) Base {
	b := Base{
		ID:      uuid.NewString(),
		Name:    name,
		Enabled: true,
		parent:  parent,
	}
	b.World.SetIdentity()
	return b
}

func (b *Base) AsBase() *Base { return b }

// Parent returns the reference of the owning container, nil for root-level elements.
// The parent is not an ownership edge.
func (b *Base) Parent() *Ref { return b.parent }

// ParentWorld returns the parent's world transform, or identity at the root.
func (b *Base) ParentWorld() *math32.Matrix4 {
	if b.parent.Valid() {
		return &b.parent.Element().AsBase().World
	}
	return math32.Identity4()
}

// DisplayName is the name shown in the hierarchy view.
func (b *Base) DisplayName() string {
	if !b.Enabled {
		return b.Name + domain.DisabledSuffix
	}
	return b.Name
}

func (b *Base) Children() *List { return nil }

func (b *Base) StoreJSON(map[string]any) {}

func (b *Base) LoadJSON(map[string]any) error { return nil }

// BaseFields returns the serialized common fields.
func (b *Base) BaseFields() map[string]any {
	return map[string]any{
		"name":    b.Name,
		"enabled": b.Enabled,
	}
}

// Animated is the capability of variants with animation playback controls.
type Animated interface {
	Element
	Animation() *render.AnimationState
}

// AsAnimated probes e for the Animated capability.
func AsAnimated(e Element) (Animated, bool) {
	a, ok := e.(Animated)
	return a, ok
}

// Positioned is the capability of variants with a local position.
type Positioned interface {
	Element
	Position() math32.Vector3
	SetPosition(p math32.Vector3)
}

// AsPositioned probes e for the Positioned capability.
func AsPositioned(e Element) (Positioned, bool) {
	p, ok := e.(Positioned)
	return p, ok
}

// IsContainer reports whether e owns a child list.
func IsContainer(e Element) bool {
	return e != nil && e.Children() != nil
}
