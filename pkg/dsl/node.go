package dsl

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	tag      string
	fields   map[string]any
	enabled  bool
	children []*NodeBuilder
	parent   *NodeBuilder
	builder  *Builder
}

func newNode(b *Builder, parent *NodeBuilder, tag string) *NodeBuilder {
	return &NodeBuilder{
		tag:     tag,
		fields:  make(map[string]any),
		enabled: true,
		parent:  parent,
		builder: b,
	}
}

// Name sets the element name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.fields["name"] = name
	return n
}

// Set overrides one editable field. Values use the document encoding, so vectors are
// slices of numbers.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	n.fields[key] = value
	return n
}

// Disabled marks the node, and therefore its subtree, as disabled.
func (n *NodeBuilder) Disabled() *NodeBuilder {
	n.enabled = false
	return n
}

// Child appends a child node and returns it. The node must be a container when built.
func (n *NodeBuilder) Child(tag string) *NodeBuilder {
	c := newNode(n.builder, n, tag)
	n.children = append(n.children, c)
	return c
}

// Up returns the parent node, or the node itself at the root.
func (n *NodeBuilder) Up() *NodeBuilder {
	if n.parent == nil {
		return n
	}
	return n.parent
}

// Add appends a new root node to the builder.
func (n *NodeBuilder) Add(tag string) *NodeBuilder {
	return n.builder.Add(tag)
}
