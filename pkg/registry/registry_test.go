package registry_test

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct{ scene.Base }

func (s *stub) UpdateInstanceData()                        {}
func (s *stub) IntoJSON() map[string]any                   { return s.BaseFields() }
func (s *stub) ApplyFields(map[string]any) error           { return nil }
func (s *stub) AddToRenderScene(ports.RenderRegistry)      {}
func (s *stub) RemoveFromRenderScene(ports.RenderRegistry) {}
func (s *stub) TypeName() string                           { return "Stub" }

func stubEntry(tag string, c domain.Category) registry.Entry {
	return registry.Entry{
		Tag:      tag,
		Category: c,
		Default: func(_ *scene.Context, parent *scene.Ref) (scene.Element, error) {
			return &stub{Base: scene.NewBase(parent, "New "+tag)}, nil
		},
		FromJSON: func(_ *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error) {
			name, _ := j["name"].(string)
			return &stub{Base: scene.NewBase(parent, name)}, nil
		},
	}
}

func TestRegistry_CreateDefaultAndFromJSON(t *testing.T) {
	r := registry.NewRegistry()
	r.Register(stubEntry("Stub", domain.CategoryEntity))

	e, err := r.CreateDefault(&scene.Context{}, "Stub", nil)
	require.NoError(t, err)
	assert.Equal(t, "New Stub", e.AsBase().Name)

	e, err = r.CreateFromJSON(&scene.Context{}, "Stub", nil, map[string]any{"name": "loaded"})
	require.NoError(t, err)
	assert.Equal(t, "loaded", e.AsBase().Name)
}

func TestRegistry_UnknownTag(t *testing.T) {
	r := registry.NewRegistry()

	_, err := r.CreateDefault(&scene.Context{}, "Teapot", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownTypeTag)

	_, err = r.CreateFromJSON(&scene.Context{}, "Teapot", nil, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownTypeTag)
}

func TestRegistry_FactoryErrorPropagates(t *testing.T) {
	r := registry.NewRegistry()
	r.Register(registry.Entry{
		Tag: "Broken",
		Default: func(*scene.Context, *scene.Ref) (scene.Element, error) {
			return nil, errors.Join(domain.ErrConstruction, errors.New("missing.obj"))
		},
	})

	_, err := r.CreateDefault(&scene.Context{}, "Broken", nil)
	assert.ErrorIs(t, err, domain.ErrConstruction)

	_, err = r.CreateFromJSON(&scene.Context{}, "Broken", nil, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownTypeTag, "an entry without a JSON factory cannot be loaded")
}

func TestRegistry_OrderAndCategories(t *testing.T) {
	r := registry.NewRegistry()
	r.Register(stubEntry("B", domain.CategoryLight))
	r.Register(stubEntry("A", domain.CategoryEntity))
	r.Register(stubEntry("C", domain.CategoryLight))
	r.Register(stubEntry("B", domain.CategoryLight)) // overwrite keeps position

	var tags []string
	for _, e := range r.Entries() {
		tags = append(tags, e.Tag)
	}
	assert.Equal(t, []string{"B", "A", "C"}, tags)

	lights := r.ByCategory(domain.CategoryLight)
	require.Len(t, lights, 2)
	assert.Equal(t, "B", lights[0].Tag)
	assert.Equal(t, "C", lights[1].Tag)
	assert.Empty(t, r.ByCategory(domain.CategoryGroup))
}
