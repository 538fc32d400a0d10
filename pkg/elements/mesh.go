package elements

import (
	"maps"

	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/aretw0/arbor/pkg/scene"
)

// mesh is the state shared by the entity variants: a transform and one drawable.
type mesh struct {
	scene.Base
	Transform scene.Transform
	Model     string
	Drawable  *render.Entity

	res ports.ResourceProvider
}

func newMesh(sc *scene.Context, parent *scene.Ref, name string, kind render.EntityKind) mesh {
	m := mesh{
		Base:      scene.NewBase(parent, name),
		Transform: scene.NewTransform(),
		Drawable:  render.NewEntity(kind, render.MeshHandle{}),
	}
	if sc != nil {
		m.res = sc.Resources
	}
	return m
}

func (m *mesh) Position() math32.Vector3     { return m.Transform.Position }
func (m *mesh) SetPosition(p math32.Vector3) { m.Transform.Position = p }

func (m *mesh) UpdateInstanceData() {
	m.World = m.Transform.World(m.ParentWorld())
	m.Drawable.Instance.Model = m.World
}

func (m *mesh) AddToRenderScene(reg ports.RenderRegistry)      { reg.InsertEntity(m.Drawable) }
func (m *mesh) RemoveFromRenderScene(reg ports.RenderRegistry) { reg.RemoveEntity(m.Drawable) }

func (m *mesh) StoreJSON(j map[string]any) {
	if m.Drawable.Mesh.Source == "" {
		j[domain.KeyError] = "mesh has no source file"
	}
}

// reloadModel resolves the model when it changed or was never loaded.
func (m *mesh) reloadModel(name string) (render.MeshHandle, error) {
	if name == m.Model && m.Drawable.Mesh.ID != "" {
		return m.Drawable.Mesh, nil
	}
	return loadModel(m.res, name)
}

func (m *mesh) json(extra map[string]any) map[string]any {
	j := m.BaseFields()
	maps.Copy(j, m.Transform.Fields())
	j["model"] = m.Model
	maps.Copy(j, extra)
	return j
}

type entityFields struct {
	Name            string          `mapstructure:"name"`
	Transform       transformFields `mapstructure:",squash"`
	Model           string          `mapstructure:"model"`
	DiffuseTexture  string          `mapstructure:"diffuse_texture"`
	SpecularTexture string          `mapstructure:"specular_texture"`
	Material        materialFields  `mapstructure:"material"`
}

var meshKeys = []string{"name", "position", "rotation", "scale", "model"}

// Entity is a standard textured mesh instance.
type Entity struct {
	mesh
	DiffuseTexture  string
	SpecularTexture string
}

// NewEntity creates an entity showing model at the origin.
func NewEntity(sc *scene.Context, parent *scene.Ref, name, model string) (*Entity, error) {
	f := defaultEntityFields(name, model)
	return buildEntity(sc, parent, f, render.EntityStandard)
}

func defaultEntityFields(name, model string) entityFields {
	return entityFields{
		Name:      name,
		Transform: transformFieldsOf(scene.NewTransform()),
		Model:     model,
		Material:  materialFieldsOf(render.DefaultMaterial()),
	}
}

func buildEntity(sc *scene.Context, parent *scene.Ref, f entityFields, kind render.EntityKind) (*Entity, error) {
	e := &Entity{mesh: newMesh(sc, parent, f.Name, kind)}
	if err := e.apply(f); err != nil {
		return nil, err
	}
	return e, nil
}

func entityFromJSON(sc *scene.Context, parent *scene.Ref, j map[string]any, kind render.EntityKind) (*Entity, error) {
	if err := requireKeys(j, meshKeys...); err != nil {
		return nil, err
	}
	f := defaultEntityFields("", "")
	if err := decodeFields(j, &f, false); err != nil {
		return nil, err
	}
	e, err := buildEntity(sc, parent, f, kind)
	if err != nil {
		return nil, err
	}
	if err := readEnabled(j, &e.Base); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entity) TypeName() string { return domain.TagEntity }

func (e *Entity) fields() entityFields {
	return entityFields{
		Name:            e.Name,
		Transform:       transformFieldsOf(e.Transform),
		Model:           e.Model,
		DiffuseTexture:  e.DiffuseTexture,
		SpecularTexture: e.SpecularTexture,
		Material:        materialFieldsOf(e.Drawable.Instance.Material),
	}
}

// apply validates every field and loads changed resources before touching the entity.
func (e *Entity) apply(f entityFields) error {
	t, err := f.Transform.transform()
	if err != nil {
		return err
	}
	mat, err := f.Material.material()
	if err != nil {
		return err
	}
	meshHandle, err := e.reloadModel(f.Model)
	if err != nil {
		return err
	}
	diffuse, err := e.reloadTexture(e.Drawable.Diffuse, e.DiffuseTexture, f.DiffuseTexture)
	if err != nil {
		return err
	}
	specular, err := e.reloadTexture(e.Drawable.Specular, e.SpecularTexture, f.SpecularTexture)
	if err != nil {
		return err
	}

	e.Name = f.Name
	e.Transform = t
	e.Model = f.Model
	e.DiffuseTexture = f.DiffuseTexture
	e.SpecularTexture = f.SpecularTexture
	e.Drawable.Mesh = meshHandle
	e.Drawable.Diffuse = diffuse
	e.Drawable.Specular = specular
	e.Drawable.Instance.Material = mat
	return nil
}

func (e *Entity) reloadTexture(cur render.TextureHandle, curName, name string) (render.TextureHandle, error) {
	if name == curName && cur.ID != "" {
		return cur, nil
	}
	return loadTexture(e.res, name)
}

func (e *Entity) ApplyFields(patch map[string]any) error {
	f := e.fields()
	if err := decodeFields(patch, &f, true); err != nil {
		return err
	}
	return e.apply(f)
}

func (e *Entity) IntoJSON() map[string]any {
	f := e.fields()
	return e.json(map[string]any{
		"diffuse_texture":  f.DiffuseTexture,
		"specular_texture": f.SpecularTexture,
		"material":         f.Material.json(),
	})
}

func (e *Entity) StoreJSON(j map[string]any) {
	e.mesh.StoreJSON(j)
	if e.DiffuseTexture != "" && e.Drawable.Diffuse.Source == "" {
		j[domain.KeyError] = "diffuse texture has no source file"
	}
	if e.SpecularTexture != "" && e.Drawable.Specular.Source == "" {
		j[domain.KeyError] = "specular texture has no source file"
	}
}

// AnimatedEntity is an entity whose mesh plays a skeletal animation clip.
type AnimatedEntity struct {
	Entity
}

// NewAnimatedEntity creates an animated entity showing model at the origin.
func NewAnimatedEntity(sc *scene.Context, parent *scene.Ref, name, model string) (*AnimatedEntity, error) {
	e, err := buildEntity(sc, parent, defaultEntityFields(name, model), render.EntityAnimated)
	if err != nil {
		return nil, err
	}
	return &AnimatedEntity{Entity: *e}, nil
}

func (a *AnimatedEntity) TypeName() string { return domain.TagAnimatedEntity }

// Animation returns the playback state shared with the render registry.
func (a *AnimatedEntity) Animation() *render.AnimationState { return a.Drawable.Animation }

type animationFields struct {
	Clip    string  `mapstructure:"clip"`
	Speed   float32 `mapstructure:"speed"`
	Time    float32 `mapstructure:"time"`
	Playing bool    `mapstructure:"playing"`
}

func (a *AnimatedEntity) animationFields() animationFields {
	s := a.Animation()
	return animationFields{Clip: s.Clip, Speed: s.Speed, Time: s.Time, Playing: s.Playing}
}

func (a *AnimatedEntity) IntoJSON() map[string]any {
	j := a.Entity.IntoJSON()
	f := a.animationFields()
	j["animation"] = map[string]any{
		"clip":    f.Clip,
		"speed":   f.Speed,
		"time":    f.Time,
		"playing": f.Playing,
	}
	return j
}

// LoadJSON restores the playback state. A missing animation object keeps the defaults.
func (a *AnimatedEntity) LoadJSON(j map[string]any) error {
	v, ok := j["animation"]
	if !ok {
		return nil
	}
	f, err := a.decodeAnimation(v, false)
	if err != nil {
		return err
	}
	a.setAnimation(f)
	return nil
}

func (a *AnimatedEntity) ApplyFields(patch map[string]any) error {
	rest := maps.Clone(patch)
	v, hasAnim := rest["animation"]
	delete(rest, "animation")

	var anim animationFields
	if hasAnim {
		var err error
		if anim, err = a.decodeAnimation(v, true); err != nil {
			return err
		}
	}
	if err := a.Entity.ApplyFields(rest); err != nil {
		return err
	}
	if hasAnim {
		a.setAnimation(anim)
	}
	return nil
}

func (a *AnimatedEntity) decodeAnimation(v any, strict bool) (animationFields, error) {
	f := a.animationFields()
	m, ok := v.(map[string]any)
	if !ok {
		return f, malformed("animation", "an object")
	}
	if err := decodeFields(m, &f, strict); err != nil {
		return f, err
	}
	return f, nil
}

func (a *AnimatedEntity) setAnimation(f animationFields) {
	*a.Animation() = render.AnimationState{Clip: f.Clip, Speed: f.Speed, Time: f.Time, Playing: f.Playing}
}

type emissiveFields struct {
	Name         string          `mapstructure:"name"`
	Transform    transformFields `mapstructure:",squash"`
	Model        string          `mapstructure:"model"`
	EmissionTint []float32       `mapstructure:"emission_tint"`
}

// EmissiveEntity is an unlit mesh drawn in a flat emission tint.
type EmissiveEntity struct {
	mesh
}

// NewEmissiveEntity creates an emissive entity showing model at the origin.
func NewEmissiveEntity(sc *scene.Context, parent *scene.Ref, name, model string) (*EmissiveEntity, error) {
	return buildEmissive(sc, parent, defaultEmissiveFields(name, model))
}

func defaultEmissiveFields(name, model string) emissiveFields {
	return emissiveFields{
		Name:         name,
		Transform:    transformFieldsOf(scene.NewTransform()),
		Model:        model,
		EmissionTint: []float32{1, 1, 1, 1},
	}
}

func buildEmissive(sc *scene.Context, parent *scene.Ref, f emissiveFields) (*EmissiveEntity, error) {
	e := &EmissiveEntity{mesh: newMesh(sc, parent, f.Name, render.EntityEmissive)}
	if err := e.apply(f); err != nil {
		return nil, err
	}
	return e, nil
}

func emissiveFromJSON(sc *scene.Context, parent *scene.Ref, j map[string]any) (*EmissiveEntity, error) {
	if err := requireKeys(j, append(meshKeys, "emission_tint")...); err != nil {
		return nil, err
	}
	f := defaultEmissiveFields("", "")
	if err := decodeFields(j, &f, false); err != nil {
		return nil, err
	}
	e, err := buildEmissive(sc, parent, f)
	if err != nil {
		return nil, err
	}
	if err := readEnabled(j, &e.Base); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EmissiveEntity) TypeName() string { return domain.TagEmissiveEntity }

func (e *EmissiveEntity) fields() emissiveFields {
	return emissiveFields{
		Name:         e.Name,
		Transform:    transformFieldsOf(e.Transform),
		Model:        e.Model,
		EmissionTint: scene.Vec4Array(e.Drawable.Instance.EmissionTint),
	}
}

func (e *EmissiveEntity) apply(f emissiveFields) error {
	t, err := f.Transform.transform()
	if err != nil {
		return err
	}
	tint, err := vec4("emission_tint", f.EmissionTint)
	if err != nil {
		return err
	}
	meshHandle, err := e.reloadModel(f.Model)
	if err != nil {
		return err
	}

	e.Name = f.Name
	e.Transform = t
	e.Model = f.Model
	e.Drawable.Mesh = meshHandle
	e.Drawable.Instance.EmissionTint = tint
	return nil
}

func (e *EmissiveEntity) ApplyFields(patch map[string]any) error {
	f := e.fields()
	if err := decodeFields(patch, &f, true); err != nil {
		return err
	}
	return e.apply(f)
}

func (e *EmissiveEntity) IntoJSON() map[string]any {
	return e.json(map[string]any{
		"emission_tint": scene.Vec4Array(e.Drawable.Instance.EmissionTint),
	})
}
