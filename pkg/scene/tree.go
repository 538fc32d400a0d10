package scene

// Tree is an ownership hierarchy of elements rooted at a synthetic root list.
type Tree struct {
	root *List
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{root: NewList()}
}

// Root returns the root list.
func (t *Tree) Root() *List { return t.root }

// Contains reports whether r denotes an element reachable from the root list.
// References into subtrees that were removed as a whole are not contained.
func (t *Tree) Contains(r *Ref) bool {
	for cur := r; cur.Valid(); {
		l := cur.list
		if l.owner == nil {
			return l == t.root
		}
		cur = l.owner
	}
	return false
}

// Len counts every element in the tree.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*Ref, int) bool {
		n++
		return true
	})
	return n
}

// Walk visits every element depth-first, parents before children. Returning false from fn
// skips the element's subtree.
func (t *Tree) Walk(fn func(r *Ref, depth int) bool) {
	walkList(t.root, 0, fn)
}

// Find returns the reference of the element with the given ID, or nil.
func (t *Tree) Find(id string) *Ref {
	var found *Ref
	t.Walk(func(r *Ref, _ int) bool {
		if found != nil {
			return false
		}
		if r.Element().AsBase().ID == id {
			found = r
			return false
		}
		return true
	})
	return found
}

// UpdateAll recomputes every derived transform top-down.
func (t *Tree) UpdateAll() {
	for r := range t.root.All() {
		UpdateSubtree(r)
	}
}

func walkList(l *List, depth int, fn func(*Ref, int) bool) {
	for r := range l.All() {
		if !fn(r, depth) {
			continue
		}
		if children := r.Element().Children(); children != nil {
			walkList(children, depth+1, fn)
		}
	}
}
