// Package render holds the render-side data owned by scene elements: mesh and texture
// handles, drawable entities and lights. GPU representations live behind the render
// registry; this package only carries what elements hand over to it.
package render

import (
	"cogentcore.org/core/math32"
	"github.com/google/uuid"
)

// MeshHandle identifies mesh data produced by a model loader.
// Source is the file the mesh was loaded from, empty for procedural meshes.
type MeshHandle struct {
	ID       string
	Source   string
	Animated bool
}

// TextureHandle identifies texture data. Source is empty for placeholder textures.
type TextureHandle struct {
	ID     string
	Source string
}

// Material is the per-instance surface description of a standard entity.
type Material struct {
	DiffuseTint  math32.Vector4
	SpecularTint math32.Vector4
	AmbientTint  math32.Vector4
	Shininess    float32
}

// DefaultMaterial is the white material used by new entities.
func DefaultMaterial() Material {
	return Material{
		DiffuseTint:  math32.Vec4(1, 1, 1, 1),
		SpecularTint: math32.Vec4(1, 1, 1, 1),
		AmbientTint:  math32.Vec4(1, 1, 1, 1),
		Shininess:    128,
	}
}

// EntityKind selects the pipeline an entity is drawn with.
type EntityKind int

const (
	EntityStandard EntityKind = iota
	EntityAnimated
	EntityEmissive
)

func (k EntityKind) String() string {
	switch k {
	case EntityAnimated:
		return "animated"
	case EntityEmissive:
		return "emissive"
	default:
		return "standard"
	}
}

// AnimationState is the playback state of an animated entity.
type AnimationState struct {
	Clip    string
	Speed   float32
	Time    float32
	Playing bool
}

// InstanceData is recomputed by the owning element on every update.
type InstanceData struct {
	Model        math32.Matrix4
	Material     Material
	EmissionTint math32.Vector4
}

// Entity is a drawable registered with the render registry.
type Entity struct {
	ID        string
	Kind      EntityKind
	Mesh      MeshHandle
	Diffuse   TextureHandle
	Specular  TextureHandle
	Instance  InstanceData
	Animation *AnimationState
}

// NewEntity creates an entity with a fresh handle ID and an identity model matrix.
func NewEntity(kind EntityKind, mesh MeshHandle) *Entity {
	e := &Entity{
		ID:   uuid.NewString(),
		Kind: kind,
		Mesh: mesh,
	}
	e.Instance.Model.SetIdentity()
	e.Instance.Material = DefaultMaterial()
	e.Instance.EmissionTint = math32.Vec4(1, 1, 1, 1)
	if kind == EntityAnimated {
		e.Animation = &AnimationState{Speed: 1, Playing: true}
	}
	return e
}

// LightKind distinguishes light types in the registry.
type LightKind int

const (
	LightPoint LightKind = iota
	LightDirectional
)

func (k LightKind) String() string {
	if k == LightDirectional {
		return "directional"
	}
	return "point"
}

// Light is a light source registered with the render registry.
type Light interface {
	LightID() string
	Kind() LightKind
}

// PointLight emits from a world position. Colour alpha is the intensity.
type PointLight struct {
	ID       string
	Position math32.Vector3
	Colour   math32.Vector4
}

// NewPointLight creates a point light with a fresh handle ID.
func NewPointLight(colour math32.Vector4) *PointLight {
	return &PointLight{ID: uuid.NewString(), Colour: colour}
}

func (l *PointLight) LightID() string { return l.ID }
func (l *PointLight) Kind() LightKind { return LightPoint }

// DirectionalLight emits along a world direction. Colour alpha is the intensity.
type DirectionalLight struct {
	ID        string
	Direction math32.Vector3
	Colour    math32.Vector4
}

// NewDirectionalLight creates a directional light with a fresh handle ID.
func NewDirectionalLight(direction math32.Vector3, colour math32.Vector4) *DirectionalLight {
	return &DirectionalLight{ID: uuid.NewString(), Direction: direction.Normal(), Colour: colour}
}

func (l *DirectionalLight) LightID() string { return l.ID }
func (l *DirectionalLight) Kind() LightKind { return LightDirectional }
