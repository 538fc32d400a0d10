package elements

import (
	"maps"

	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/scene"
)

type groupFields struct {
	Name      string          `mapstructure:"name"`
	Transform transformFields `mapstructure:",squash"`
}

// Group is a transform node owning an ordered list of children.
// It registers nothing itself.
type Group struct {
	scene.Base
	Transform scene.Transform

	children *scene.List
}

// NewGroup creates an empty group at the origin.
func NewGroup(parent *scene.Ref, name string) *Group {
	return &Group{
		Base:      scene.NewBase(parent, name),
		Transform: scene.NewTransform(),
		children:  scene.NewList(),
	}
}

func groupFromJSON(parent *scene.Ref, j map[string]any) (*Group, error) {
	if err := requireKeys(j, "name", "position", "rotation", "scale"); err != nil {
		return nil, err
	}
	g := NewGroup(parent, "")
	f := g.fields()
	if err := decodeFields(j, &f, false); err != nil {
		return nil, err
	}
	if err := g.apply(f); err != nil {
		return nil, err
	}
	if err := readEnabled(j, &g.Base); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Group) TypeName() string { return domain.TagGroup }

func (g *Group) Children() *scene.List { return g.children }

func (g *Group) Position() math32.Vector3     { return g.Transform.Position }
func (g *Group) SetPosition(p math32.Vector3) { g.Transform.Position = p }

func (g *Group) fields() groupFields {
	return groupFields{Name: g.Name, Transform: transformFieldsOf(g.Transform)}
}

func (g *Group) apply(f groupFields) error {
	t, err := f.Transform.transform()
	if err != nil {
		return err
	}
	g.Name = f.Name
	g.Transform = t
	return nil
}

func (g *Group) ApplyFields(patch map[string]any) error {
	f := g.fields()
	if err := decodeFields(patch, &f, true); err != nil {
		return err
	}
	return g.apply(f)
}

func (g *Group) IntoJSON() map[string]any {
	j := g.BaseFields()
	maps.Copy(j, g.Transform.Fields())
	return j
}

func (g *Group) UpdateInstanceData() {
	g.World = g.Transform.World(g.ParentWorld())
}

func (g *Group) AddToRenderScene(ports.RenderRegistry)      {}
func (g *Group) RemoveFromRenderScene(ports.RenderRegistry) {}
