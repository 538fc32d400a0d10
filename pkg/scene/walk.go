package scene

// VisitSubtree calls visit on the element denoted by root and then on every descendant,
// depth-first. The null reference visits nothing.
func VisitSubtree(root *Ref, visit func(Element)) {
	if root == nil {
		return
	}
	visit(root.Element())
	VisitDescendants(root, visit)
}

// VisitDescendants calls visit on every descendant of root, but not on root itself.
func VisitDescendants(root *Ref, visit func(Element)) {
	if root == nil {
		return
	}
	children := root.Element().Children()
	if children == nil {
		return
	}
	for r := range children.All() {
		VisitSubtree(r, visit)
	}
}

// UpdateSubtree recomputes derived transforms of root and its descendants, each parent
// before its children.
func UpdateSubtree(root *Ref) {
	VisitSubtree(root, func(e Element) {
		e.UpdateInstanceData()
	})
}

// IsAncestorOrSelf reports whether a is b or one of b's ancestors.
func IsAncestorOrSelf(a, b *Ref) bool {
	if a == nil {
		return false
	}
	for cur := b; cur != nil; cur = cur.Element().AsBase().Parent() {
		if cur == a {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors of r.
func Depth(r *Ref) int {
	d := 0
	for cur := r.Element().AsBase().Parent(); cur != nil; cur = cur.Element().AsBase().Parent() {
		d++
	}
	return d
}
