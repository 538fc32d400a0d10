package scene

import "slices"

// Selection tracks an optional primary reference and an ordered multi-selection set.
// Whenever the set is non-empty the primary reference is one of its members.
type Selection struct {
	primary *Ref
	set     []*Ref
}

// Primary returns the primary reference, or nil.
func (s *Selection) Primary() *Ref { return s.primary }

// Selected returns a copy of the multi-selection set in selection order.
func (s *Selection) Selected() []*Ref { return slices.Clone(s.set) }

// Len returns the size of the multi-selection set.
func (s *Selection) Len() int { return len(s.set) }

// Contains reports whether r is in the multi-selection set.
func (s *Selection) Contains(r *Ref) bool {
	return r != nil && slices.Contains(s.set, r)
}

// Select applies a click on r. With toggle (the modifier key held) r's membership is
// flipped; otherwise the set is replaced by {r}. Selecting the null reference without the
// modifier clears the selection.
func (s *Selection) Select(r *Ref, toggle bool) {
	if !toggle {
		s.Clear()
		if r != nil {
			s.set = append(s.set, r)
			s.primary = r
		}
		return
	}
	if r == nil {
		return
	}
	if i := slices.Index(s.set, r); i >= 0 {
		s.set = slices.Delete(s.set, i, i+1)
		if s.primary == r {
			s.primary = nil
			if len(s.set) > 0 {
				s.primary = s.set[len(s.set)-1]
			}
		}
		return
	}
	s.set = append(s.set, r)
	s.primary = r
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.primary = nil
	s.set = nil
}

// Prune drops references for which keep returns false, re-electing the primary if needed.
func (s *Selection) Prune(keep func(*Ref) bool) {
	s.set = slices.DeleteFunc(s.set, func(r *Ref) bool { return !keep(r) })
	if s.primary != nil && !slices.Contains(s.set, s.primary) {
		s.primary = nil
		if len(s.set) > 0 {
			s.primary = s.set[len(s.set)-1]
		}
	}
}

// Snapshot returns an independent copy of the selection.
func (s *Selection) Snapshot() Selection {
	return Selection{primary: s.primary, set: slices.Clone(s.set)}
}
