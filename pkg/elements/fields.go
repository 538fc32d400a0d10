package elements

import (
	"errors"
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/aretw0/arbor/pkg/scene"
	"github.com/mitchellh/mapstructure"
)

// decodeFields decodes a serialized object onto out. Reserved keys (label, children, error)
// and the enabled flag are never decoded; enabling cascades, so it belongs to the editor.
// With strict set, any other unknown key is an error.
// Slices are replaced, not merged, so a short vector cannot inherit trailing components.
func decodeFields(j map[string]any, out any, strict bool) error {
	fields := make(map[string]any, len(j))
	for k, v := range j {
		switch k {
		case domain.KeyLabel, domain.KeyChildren, domain.KeyError, KeyEnabled:
			continue
		}
		fields[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: strict,
		ZeroFields:  true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	return nil
}

// requireKeys fails with ErrMalformedJSON when any key is absent.
func requireKeys(j map[string]any, keys ...string) error {
	for _, k := range keys {
		if _, ok := j[k]; !ok {
			return fmt.Errorf("missing field %q: %w", k, domain.ErrMalformedJSON)
		}
	}
	return nil
}

// readEnabled applies the optional enabled flag of a serialized object.
func readEnabled(j map[string]any, b *scene.Base) error {
	v, ok := j[KeyEnabled]
	if !ok {
		return nil
	}
	enabled, ok := v.(bool)
	if !ok {
		return malformed(KeyEnabled, "a boolean")
	}
	b.Enabled = enabled
	return nil
}

func vec3(field string, v []float32) (math32.Vector3, error) {
	if len(v) != 3 {
		return math32.Vector3{}, fmt.Errorf("field %q needs 3 components, got %d: %w", field, len(v), domain.ErrMalformedJSON)
	}
	return math32.Vec3(v[0], v[1], v[2]), nil
}

func vec4(field string, v []float32) (math32.Vector4, error) {
	if len(v) != 4 {
		return math32.Vector4{}, fmt.Errorf("field %q needs 4 components, got %d: %w", field, len(v), domain.ErrMalformedJSON)
	}
	return math32.Vec4(v[0], v[1], v[2], v[3]), nil
}

type transformFields struct {
	Position []float32 `mapstructure:"position"`
	Rotation []float32 `mapstructure:"rotation"`
	Scale    []float32 `mapstructure:"scale"`
}

func transformFieldsOf(t scene.Transform) transformFields {
	return transformFields{
		Position: scene.Vec3Array(t.Position),
		Rotation: scene.Vec3Array(t.Rotation),
		Scale:    scene.Vec3Array(t.Scale),
	}
}

func (f transformFields) transform() (scene.Transform, error) {
	var t scene.Transform
	var err error
	if t.Position, err = vec3("position", f.Position); err != nil {
		return t, err
	}
	if t.Rotation, err = vec3("rotation", f.Rotation); err != nil {
		return t, err
	}
	if t.Scale, err = vec3("scale", f.Scale); err != nil {
		return t, err
	}
	return t, nil
}

type materialFields struct {
	DiffuseTint  []float32 `mapstructure:"diffuse_tint"`
	SpecularTint []float32 `mapstructure:"specular_tint"`
	AmbientTint  []float32 `mapstructure:"ambient_tint"`
	Shininess    float32   `mapstructure:"shininess"`
}

func materialFieldsOf(m render.Material) materialFields {
	return materialFields{
		DiffuseTint:  scene.Vec4Array(m.DiffuseTint),
		SpecularTint: scene.Vec4Array(m.SpecularTint),
		AmbientTint:  scene.Vec4Array(m.AmbientTint),
		Shininess:    m.Shininess,
	}
}

func (f materialFields) material() (render.Material, error) {
	var m render.Material
	var err error
	if m.DiffuseTint, err = vec4("material.diffuse_tint", f.DiffuseTint); err != nil {
		return m, err
	}
	if m.SpecularTint, err = vec4("material.specular_tint", f.SpecularTint); err != nil {
		return m, err
	}
	if m.AmbientTint, err = vec4("material.ambient_tint", f.AmbientTint); err != nil {
		return m, err
	}
	m.Shininess = f.Shininess
	return m, nil
}

func (f materialFields) json() map[string]any {
	return map[string]any{
		"diffuse_tint":  f.DiffuseTint,
		"specular_tint": f.SpecularTint,
		"ambient_tint":  f.AmbientTint,
		"shininess":     f.Shininess,
	}
}

func loadModel(res ports.ResourceProvider, name string) (render.MeshHandle, error) {
	if res == nil {
		return render.MeshHandle{}, fmt.Errorf("load model %q: no resource provider: %w", name, domain.ErrConstruction)
	}
	mesh, err := res.LoadModel(name)
	if err != nil {
		return render.MeshHandle{}, constructionError("load model "+name, err)
	}
	return mesh, nil
}

// loadTexture resolves a texture name; the empty name is the white placeholder.
func loadTexture(res ports.ResourceProvider, name string) (render.TextureHandle, error) {
	if res == nil {
		return render.TextureHandle{}, fmt.Errorf("load texture %q: no resource provider: %w", name, domain.ErrConstruction)
	}
	if name == "" {
		return res.DefaultWhite(), nil
	}
	tex, err := res.LoadTexture(name)
	if err != nil {
		return render.TextureHandle{}, constructionError("load texture "+name, err)
	}
	return tex, nil
}

func constructionError(op string, err error) error {
	if errors.Is(err, domain.ErrConstruction) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrConstruction, err)
}

func malformed(field, want string) error {
	return fmt.Errorf("field %q must be %s: %w", field, want, domain.ErrMalformedJSON)
}
