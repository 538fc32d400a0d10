package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/scene"
)

// Builder collects the root nodes of a document.
type Builder struct {
	roots []*NodeBuilder
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{}
}

// Add appends a root node of the given type tag.
func (b *Builder) Add(tag string) *NodeBuilder {
	n := newNode(b, nil, tag)
	b.roots = append(b.roots, n)
	return n
}

// Tree constructs the scene described by the builder. Disabled nodes disable their
// subtrees, and every world transform is up to date.
func (b *Builder) Tree(reg *registry.Registry, sc *scene.Context) (*scene.Tree, error) {
	tree := scene.NewTree()
	for i, n := range b.roots {
		if err := n.build(reg, sc, tree.Root(), true, fmt.Sprint(i)); err != nil {
			return nil, err
		}
	}
	for r := range tree.Root().All() {
		scene.UpdateSubtree(r)
	}
	return tree, nil
}

// Build constructs the scene and serializes it as a document.
func (b *Builder) Build(reg *registry.Registry, sc *scene.Context) ([]byte, error) {
	tree, err := b.Tree(reg, sc)
	if err != nil {
		return nil, err
	}
	data, _, err := persistence.NewCodec(reg).Marshal(tree.Root())
	return data, err
}

// Populate constructs the scene and registers every enabled element with rs.
func (b *Builder) Populate(reg *registry.Registry, sc *scene.Context, rs ports.RenderRegistry) (*scene.Tree, error) {
	tree, err := b.Tree(reg, sc)
	if err != nil {
		return nil, err
	}
	tree.Walk(func(r *scene.Ref, _ int) bool {
		if el := r.Element(); el.AsBase().Enabled {
			el.AddToRenderScene(rs)
		}
		return true
	})
	return tree, nil
}

func (n *NodeBuilder) build(reg *registry.Registry, sc *scene.Context, l *scene.List, parentEnabled bool, path string) error {
	el, err := reg.CreateDefault(sc, n.tag, l.Owner())
	if err != nil {
		return fmt.Errorf("node %s (%s): %w", path, n.tag, err)
	}
	if len(n.fields) > 0 {
		if err := el.ApplyFields(n.fields); err != nil {
			return fmt.Errorf("node %s (%s): %w", path, n.tag, err)
		}
	}
	base := el.AsBase()
	base.Enabled = n.enabled && parentEnabled
	l.PushBack(el)

	if len(n.children) == 0 {
		return nil
	}
	children := el.Children()
	if children == nil {
		return fmt.Errorf("node %s (%s) cannot have children: %w", path, n.tag, domain.ErrInvalidReference)
	}
	for i, c := range n.children {
		if err := c.build(reg, sc, children, base.Enabled, path+"."+fmt.Sprint(i)); err != nil {
			return err
		}
	}
	return nil
}
