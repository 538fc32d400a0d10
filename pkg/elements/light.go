package elements

import (
	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/aretw0/arbor/pkg/scene"
)

// DefaultVisualScale is the size of the sphere marking a point light.
const DefaultVisualScale = 0.1

type pointLightFields struct {
	Name        string    `mapstructure:"name"`
	Position    []float32 `mapstructure:"position"`
	Colour      []float32 `mapstructure:"colour"`
	VisualScale float32   `mapstructure:"visual_scale"`
	Visible     bool      `mapstructure:"visible"`
}

// PointLight is a light at a local position, shown in the viewport as a small emissive
// sphere in the light's colour.
type PointLight struct {
	scene.Base
	Local       math32.Vector3
	VisualScale float32
	Visible     bool

	Light  *render.PointLight
	Sphere *render.Entity
}

// NewPointLight creates a visible white point light at position.
func NewPointLight(sc *scene.Context, parent *scene.Ref, name string, position math32.Vector3) (*PointLight, error) {
	f := defaultPointLightFields(name)
	f.Position = scene.Vec3Array(position)
	return buildPointLight(sc, parent, f)
}

func defaultPointLightFields(name string) pointLightFields {
	return pointLightFields{
		Name:        name,
		Position:    []float32{0, 0, 0},
		Colour:      []float32{1, 1, 1, 1},
		VisualScale: DefaultVisualScale,
		Visible:     true,
	}
}

func buildPointLight(sc *scene.Context, parent *scene.Ref, f pointLightFields) (*PointLight, error) {
	var res ports.ResourceProvider
	if sc != nil {
		res = sc.Resources
	}
	sphere, err := loadModel(res, domain.ModelSphere)
	if err != nil {
		return nil, err
	}
	l := &PointLight{
		Base:   scene.NewBase(parent, f.Name),
		Light:  render.NewPointLight(math32.Vec4(1, 1, 1, 1)),
		Sphere: render.NewEntity(render.EntityEmissive, sphere),
	}
	if err := l.apply(f); err != nil {
		return nil, err
	}
	return l, nil
}

func pointLightFromJSON(sc *scene.Context, parent *scene.Ref, j map[string]any) (*PointLight, error) {
	if err := requireKeys(j, "name", "position", "colour"); err != nil {
		return nil, err
	}
	f := defaultPointLightFields("")
	if err := decodeFields(j, &f, false); err != nil {
		return nil, err
	}
	l, err := buildPointLight(sc, parent, f)
	if err != nil {
		return nil, err
	}
	if err := readEnabled(j, &l.Base); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *PointLight) TypeName() string { return domain.TagPointLight }

func (l *PointLight) Position() math32.Vector3     { return l.Local }
func (l *PointLight) SetPosition(p math32.Vector3) { l.Local = p }

func (l *PointLight) fields() pointLightFields {
	return pointLightFields{
		Name:        l.Name,
		Position:    scene.Vec3Array(l.Local),
		Colour:      scene.Vec4Array(l.Light.Colour),
		VisualScale: l.VisualScale,
		Visible:     l.Visible,
	}
}

func (l *PointLight) apply(f pointLightFields) error {
	pos, err := vec3("position", f.Position)
	if err != nil {
		return err
	}
	colour, err := vec4("colour", f.Colour)
	if err != nil {
		return err
	}
	if f.VisualScale <= 0 {
		return malformed("visual_scale", "positive")
	}

	l.Name = f.Name
	l.Local = pos
	l.VisualScale = f.VisualScale
	l.Visible = f.Visible
	l.Light.Colour = colour
	l.Sphere.Instance.EmissionTint = colour
	return nil
}

func (l *PointLight) ApplyFields(patch map[string]any) error {
	f := l.fields()
	if err := decodeFields(patch, &f, true); err != nil {
		return err
	}
	return l.apply(f)
}

func (l *PointLight) IntoJSON() map[string]any {
	f := l.fields()
	j := l.BaseFields()
	j["position"] = f.Position
	j["colour"] = f.Colour
	j["visual_scale"] = f.VisualScale
	j["visible"] = f.Visible
	return j
}

func (l *PointLight) UpdateInstanceData() {
	t := scene.NewTransform()
	t.Position = l.Local
	l.World = t.World(l.ParentWorld())
	l.Light.Position = scene.WorldPosition(&l.World)

	marker := scene.NewTransform()
	marker.Scale = math32.Vec3(l.VisualScale, l.VisualScale, l.VisualScale)
	l.Sphere.Instance.Model = marker.World(&l.World)
}

func (l *PointLight) AddToRenderScene(reg ports.RenderRegistry) {
	reg.InsertLight(l.Light)
	if l.Visible {
		reg.InsertEntity(l.Sphere)
	}
}

func (l *PointLight) RemoveFromRenderScene(reg ports.RenderRegistry) {
	reg.RemoveLight(l.Light)
	if l.Visible {
		reg.RemoveEntity(l.Sphere)
	}
}

type directionalLightFields struct {
	Name      string    `mapstructure:"name"`
	Direction []float32 `mapstructure:"direction"`
	Colour    []float32 `mapstructure:"colour"`
}

// DirectionalLight shines along a local direction, rotated by its ancestors.
type DirectionalLight struct {
	scene.Base
	Direction math32.Vector3
	Light     *render.DirectionalLight
}

// NewDirectionalLight creates a white directional light pointing along direction.
func NewDirectionalLight(parent *scene.Ref, name string, direction math32.Vector3) (*DirectionalLight, error) {
	return buildDirectionalLight(parent, directionalLightFields{
		Name:      name,
		Direction: scene.Vec3Array(direction),
		Colour:    []float32{1, 1, 1, 1},
	})
}

func buildDirectionalLight(parent *scene.Ref, f directionalLightFields) (*DirectionalLight, error) {
	l := &DirectionalLight{
		Base:  scene.NewBase(parent, f.Name),
		Light: render.NewDirectionalLight(math32.Vec3(0, -1, 0), math32.Vec4(1, 1, 1, 1)),
	}
	if err := l.apply(f); err != nil {
		return nil, err
	}
	return l, nil
}

func directionalLightFromJSON(parent *scene.Ref, j map[string]any) (*DirectionalLight, error) {
	if err := requireKeys(j, "name", "direction", "colour"); err != nil {
		return nil, err
	}
	var f directionalLightFields
	if err := decodeFields(j, &f, false); err != nil {
		return nil, err
	}
	l, err := buildDirectionalLight(parent, f)
	if err != nil {
		return nil, err
	}
	if err := readEnabled(j, &l.Base); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *DirectionalLight) TypeName() string { return domain.TagDirectionalLight }

func (l *DirectionalLight) fields() directionalLightFields {
	return directionalLightFields{
		Name:      l.Name,
		Direction: scene.Vec3Array(l.Direction),
		Colour:    scene.Vec4Array(l.Light.Colour),
	}
}

func (l *DirectionalLight) apply(f directionalLightFields) error {
	dir, err := vec3("direction", f.Direction)
	if err != nil {
		return err
	}
	if dir.Length() == 0 {
		return malformed("direction", "non-zero")
	}
	colour, err := vec4("colour", f.Colour)
	if err != nil {
		return err
	}

	l.Name = f.Name
	l.Direction = dir.Normal()
	l.Light.Colour = colour
	return nil
}

func (l *DirectionalLight) ApplyFields(patch map[string]any) error {
	f := l.fields()
	if err := decodeFields(patch, &f, true); err != nil {
		return err
	}
	return l.apply(f)
}

func (l *DirectionalLight) IntoJSON() map[string]any {
	f := l.fields()
	j := l.BaseFields()
	j["direction"] = f.Direction
	j["colour"] = f.Colour
	return j
}

func (l *DirectionalLight) UpdateInstanceData() {
	l.World = *l.ParentWorld()
	l.Light.Direction = l.Direction.MulMatrix4AsVector4(&l.World, 0).Normal()
}

func (l *DirectionalLight) AddToRenderScene(reg ports.RenderRegistry)      { reg.InsertLight(l.Light) }
func (l *DirectionalLight) RemoveFromRenderScene(reg ports.RenderRegistry) { reg.RemoveLight(l.Light) }
