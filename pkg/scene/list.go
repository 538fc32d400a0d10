package scene

import "iter"

// Ref is a stable locator of an element inside its owning list.
// Inserting or removing other elements never moves or invalidates a Ref; it becomes invalid
// only when the element it denotes is removed. The nil *Ref is the null reference.
type Ref struct {
	elem       Element
	prev, next *Ref
	list       *List
}

// Element returns the referenced element, or nil for the null reference.
func (r *Ref) Element() Element {
	if r == nil {
		return nil
	}
	return r.elem
}

// Valid reports whether the referenced element is still held by a list.
func (r *Ref) Valid() bool {
	return r != nil && r.list != nil
}

// List returns the owning list, or nil once the element has been removed.
func (r *Ref) List() *List {
	if r == nil {
		return nil
	}
	return r.list
}

// Next returns the following sibling, or nil at the end of the list.
func (r *Ref) Next() *Ref {
	if !r.Valid() {
		return nil
	}
	return r.next
}

// Prev returns the preceding sibling, or nil at the front of the list.
func (r *Ref) Prev() *Ref {
	if !r.Valid() {
		return nil
	}
	return r.prev
}

// List is an ordered, owning collection of elements: the root list of a tree or the
// children of a container element. It is doubly linked so insertion and removal never
// relocate other elements.
type List struct {
	head, tail *Ref
	len        int

	// owner is the reference of the container holding this list; nil for a root list.
	owner *Ref
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Len returns the number of elements directly held by the list.
func (l *List) Len() int { return l.len }

// Front returns the first reference, or nil when empty.
func (l *List) Front() *Ref { return l.head }

// Back returns the last reference, or nil when empty.
func (l *List) Back() *Ref { return l.tail }

// Owner returns the reference of the container element holding this list.
func (l *List) Owner() *Ref { return l.owner }

// All iterates the references in order. Removing the current reference while iterating is safe.
func (l *List) All() iter.Seq[*Ref] {
	return func(yield func(*Ref) bool) {
		for r := l.head; r != nil; {
			next := r.next
			if !yield(r) {
				return
			}
			r = next
		}
	}
}

// Elements returns the elements in order.
func (l *List) Elements() []Element {
	out := make([]Element, 0, l.len)
	for r := range l.All() {
		out = append(out, r.elem)
	}
	return out
}

// PushBack appends e and returns its reference.
func (l *List) PushBack(e Element) *Ref {
	return l.insert(e, l.tail)
}

// InsertAfter inserts e immediately after mark. A nil mark inserts at the front.
// It panics if mark belongs to another list.
func (l *List) InsertAfter(e Element, mark *Ref) *Ref {
	if mark != nil && mark.list != l {
		panic("scene: InsertAfter mark is not in this list")
	}
	return l.insert(e, mark)
}

// Remove unlinks r from the list and returns its element. The reference becomes invalid.
// Removing a reference of another list is a no-op returning nil.
func (l *List) Remove(r *Ref) Element {
	if r == nil || r.list != l {
		return nil
	}
	l.unlink(r)
	r.list = nil
	r.elem.AsBase().parent = nil
	return r.elem
}

// MoveAfter relinks r, which may belong to another list, immediately after mark in l.
// r stays valid and keeps its subtree. A nil mark moves r to the front.
// It panics if r is not held by a list or mark belongs to another list.
func (l *List) MoveAfter(r, mark *Ref) {
	if !r.Valid() {
		panic("scene: MoveAfter of a removed reference")
	}
	if mark != nil && mark.list != l {
		panic("scene: MoveAfter mark is not in this list")
	}
	if r == mark {
		return
	}
	r.list.unlink(r)
	l.link(r, mark)
}

// Clear removes every element, invalidating all references into the list.
func (l *List) Clear() {
	for r := range l.All() {
		l.Remove(r)
	}
}

func (l *List) insert(e Element, after *Ref) *Ref {
	r := &Ref{elem: e}
	l.link(r, after)
	if children := e.Children(); children != nil {
		children.owner = r
		for c := range children.All() {
			c.elem.AsBase().parent = r
		}
	}
	return r
}

func (l *List) link(r, after *Ref) {
	r.list, r.prev = l, after
	if after != nil {
		r.next = after.next
		after.next = r
	} else {
		r.next = l.head
		l.head = r
	}
	if r.next != nil {
		r.next.prev = r
	} else {
		l.tail = r
	}
	l.len++
	r.elem.AsBase().parent = l.owner
}

func (l *List) unlink(r *Ref) {
	if r.prev != nil {
		r.prev.next = r.next
	} else {
		l.head = r.next
	}
	if r.next != nil {
		r.next.prev = r.prev
	} else {
		l.tail = r.prev
	}
	r.prev, r.next = nil, nil
	l.len--
}
