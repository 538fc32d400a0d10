package elements

import (
	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/aretw0/arbor/pkg/scene"
)

// RegisterDefaults adds every built-in variant to r, in creation menu order.
func RegisterDefaults(r *registry.Registry) {
	r.Register(registry.Entry{
		Tag:      domain.TagEntity,
		Category: domain.CategoryEntity,
		Default: func(sc *scene.Context, parent *scene.Ref) (scene.Element, error) {
			return element(NewEntity(sc, parent, "New Entity", domain.ModelCube))
		},
		FromJSON: func(sc *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error) {
			return element(entityFromJSON(sc, parent, j, render.EntityStandard))
		},
	})
	r.Register(registry.Entry{
		Tag:      domain.TagAnimatedEntity,
		Category: domain.CategoryEntity,
		Default: func(sc *scene.Context, parent *scene.Ref) (scene.Element, error) {
			return element(NewAnimatedEntity(sc, parent, "New Animated Entity", domain.ModelCube))
		},
		FromJSON: func(sc *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error) {
			e, err := entityFromJSON(sc, parent, j, render.EntityAnimated)
			if err != nil {
				return nil, err
			}
			return &AnimatedEntity{Entity: *e}, nil
		},
	})
	r.Register(registry.Entry{
		Tag:      domain.TagEmissiveEntity,
		Category: domain.CategoryEntity,
		Default: func(sc *scene.Context, parent *scene.Ref) (scene.Element, error) {
			return element(NewEmissiveEntity(sc, parent, "New Emissive Entity", domain.ModelSphere))
		},
		FromJSON: func(sc *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error) {
			return element(emissiveFromJSON(sc, parent, j))
		},
	})
	r.Register(registry.Entry{
		Tag:      domain.TagPointLight,
		Category: domain.CategoryLight,
		Default: func(sc *scene.Context, parent *scene.Ref) (scene.Element, error) {
			return element(NewPointLight(sc, parent, "New Point Light", math32.Vec3(0, 1, 0)))
		},
		FromJSON: func(sc *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error) {
			return element(pointLightFromJSON(sc, parent, j))
		},
	})
	r.Register(registry.Entry{
		Tag:      domain.TagDirectionalLight,
		Category: domain.CategoryLight,
		Default: func(_ *scene.Context, parent *scene.Ref) (scene.Element, error) {
			return element(NewDirectionalLight(parent, "New Directional Light", math32.Vec3(0, -1, 0)))
		},
		FromJSON: func(_ *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error) {
			return element(directionalLightFromJSON(parent, j))
		},
	})
	r.Register(registry.Entry{
		Tag:      domain.TagGroup,
		Category: domain.CategoryGroup,
		Default: func(_ *scene.Context, parent *scene.Ref) (scene.Element, error) {
			return NewGroup(parent, "New Group"), nil
		},
		FromJSON: func(_ *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error) {
			return element(groupFromJSON(parent, j))
		},
	})
}

// element drops the typed nil a failed constructor returns.
func element[T scene.Element](e T, err error) (scene.Element, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

// NewRegistry returns a registry holding the built-in variants.
func NewRegistry() *registry.Registry {
	r := registry.NewRegistry()
	RegisterDefaults(r)
	return r
}

// DefaultScene builds the root elements of a fresh document: a ground plane and a light.
func DefaultScene(sc *scene.Context) ([]scene.Element, error) {
	ground, err := NewEntity(sc, nil, "Ground Plane", domain.ModelDoublePlane)
	if err != nil {
		return nil, err
	}
	ground.Transform.Position = math32.Vec3(0, -0.01, 0)
	ground.Transform.Scale = math32.Vec3(10, 1, 10)

	light, err := NewPointLight(sc, nil, "Default Point Light", math32.Vec3(1, 2, 1))
	if err != nil {
		return nil, err
	}
	return []scene.Element{ground, light}, nil
}
