package runtime

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/scene"
)

// MenuEntry is one item of a creation menu.
type MenuEntry struct {
	Tag      string          `json:"tag"`
	Category domain.Category `json:"category"`
}

// CreationMenu lists every creatable tag in registration order.
func (e *Editor) CreationMenu() []MenuEntry {
	entries := e.registry.Entries()
	out := make([]MenuEntry, 0, len(entries))
	for _, en := range entries {
		out = append(out, MenuEntry{Tag: en.Tag, Category: en.Category})
	}
	return out
}

// HierarchyRow is one line of the hierarchy view.
type HierarchyRow struct {
	ID          string `json:"id"`
	Depth       int    `json:"depth"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Tag         string `json:"tag"`
	Enabled     bool   `json:"enabled"`
	Selected    bool   `json:"selected"`
	Primary     bool   `json:"primary"`
	Container   bool   `json:"container"`
}

// Hierarchy lists the tree depth-first, parents before children.
func (e *Editor) Hierarchy() []HierarchyRow {
	e.mu.Lock()
	defer e.mu.Unlock()

	var rows []HierarchyRow
	e.tree.Walk(func(r *scene.Ref, depth int) bool {
		el := r.Element()
		b := el.AsBase()
		rows = append(rows, HierarchyRow{
			ID:          b.ID,
			Depth:       depth,
			Name:        b.Name,
			DisplayName: b.DisplayName(),
			Tag:         el.TypeName(),
			Enabled:     b.Enabled,
			Selected:    e.selection.Contains(r),
			Primary:     e.selection.Primary() == r,
			Container:   scene.IsContainer(el),
		})
		return true
	})
	return rows
}

// Fields returns the editable fields of the element with the given ID.
func (e *Editor) Fields(id string) (map[string]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.tree.Find(id)
	if r == nil {
		return nil, false
	}
	return r.Element().IntoJSON(), true
}
