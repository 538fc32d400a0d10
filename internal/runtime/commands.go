package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/elements"
	"github.com/aretw0/arbor/pkg/scene"
)

// InsertPoint locates a position in the tree: after After in the children of Parent.
// A nil Parent is the root list; a nil After appends to the end.
type InsertPoint struct {
	Parent *scene.Ref
	After  *scene.Ref
}

// insertPoint derives where a new element goes from the primary selection: appended to the
// root with no selection, appended to a selected container, or right after a selected leaf.
func (e *Editor) insertPoint() (*scene.List, *scene.Ref) {
	primary := e.selection.Primary()
	if !e.contains(primary) {
		return e.tree.Root(), e.tree.Root().Back()
	}
	if children := primary.Element().Children(); children != nil {
		return children, children.Back()
	}
	return primary.List(), primary
}

// Create builds a default element of the given tag at the insert position derived from
// the selection and makes it the primary selection. A factory failure leaves the tree
// unchanged.
func (e *Editor) Create(ctx context.Context, tag string) (*scene.Ref, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list, after := e.insertPoint()
	el, err := e.registry.CreateDefault(e.sc, tag, list.Owner())
	if err != nil {
		e.logger.WarnContext(ctx, "failed to create element", "tag", tag, "error", err)
		e.finish(ctx, "create", err)
		return nil, err
	}

	ref := e.attach(list, after, el)
	e.selection.Select(ref, false)

	if e.hooks.OnCreate != nil {
		e.hooks.OnCreate(ctx, &domain.CreateEvent{
			EventBase: e.event(domain.EventCreate),
			Tag:       tag,
			Name:      el.AsBase().Name,
		})
	}
	e.logger.DebugContext(ctx, "element created", "tag", tag, "id", el.AsBase().ID)
	e.finish(ctx, "create", nil)
	return ref, nil
}

// attach inserts a fresh element, updates its transform and registers it unless its new
// parent is disabled, in which case it starts disabled.
func (e *Editor) attach(list *scene.List, after *scene.Ref, el scene.Element) *scene.Ref {
	if owner := list.Owner(); owner != nil && !owner.Element().AsBase().Enabled {
		el.AsBase().Enabled = false
	}
	ref := list.InsertAfter(el, after)
	scene.UpdateSubtree(ref)
	if el.AsBase().Enabled {
		el.AddToRenderScene(e.render)
	}
	return ref
}

// Select applies a hierarchy click. With toggle, r's membership in the multi-selection is
// flipped; otherwise the selection becomes {r}. The null reference clears the selection.
func (e *Editor) Select(ctx context.Context, r *scene.Ref, toggle bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r != nil && !e.contains(r) {
		err := fmt.Errorf("select: %w", domain.ErrInvalidReference)
		e.finish(ctx, "select", err)
		return err
	}
	e.selection.Select(r, toggle)
	e.finish(ctx, "select", nil)
	return nil
}

// Delete removes every element of the multi-selection with its subtree, unregistering each
// enabled node first, then clears the selection. It returns the number of erased elements.
func (e *Editor) Delete(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	erased := 0
	for _, r := range e.selection.Selected() {
		// Already gone with an ancestor deleted earlier in this pass.
		if !e.contains(r) {
			continue
		}
		scene.VisitSubtree(r, func(el scene.Element) {
			if el.AsBase().Enabled {
				el.RemoveFromRenderScene(e.render)
			}
			erased++
		})
		r.List().Remove(r)
	}
	e.selection.Clear()
	e.logger.DebugContext(ctx, "elements deleted", "count", erased)
	e.finish(ctx, "delete", nil)
	return erased
}

// ToggleEnabled flips the enabled flag of r and cascades it to every descendant.
func (e *Editor) ToggleEnabled(ctx context.Context, r *scene.Ref) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.contains(r) {
		err := fmt.Errorf("toggle: %w", domain.ErrInvalidReference)
		e.finish(ctx, "toggle_enabled", err)
		return err
	}
	e.setEnabled(r, !r.Element().AsBase().Enabled)
	e.finish(ctx, "toggle_enabled", nil)
	return nil
}

// SetEnabled sets the enabled flag of r and every descendant. Nodes already in that state
// are left alone, so repeating the call changes nothing.
func (e *Editor) SetEnabled(ctx context.Context, r *scene.Ref, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.contains(r) {
		err := fmt.Errorf("set enabled: %w", domain.ErrInvalidReference)
		e.finish(ctx, "set_enabled", err)
		return err
	}
	e.setEnabled(r, enabled)
	e.finish(ctx, "set_enabled", nil)
	return nil
}

// setEnabled applies enabled to r and its descendants whatever the state of r's ancestors.
// A node is registered exactly while it is enabled.
func (e *Editor) setEnabled(r *scene.Ref, enabled bool) {
	scene.VisitSubtree(r, func(el scene.Element) {
		b := el.AsBase()
		if b.Enabled == enabled {
			return
		}
		b.Enabled = enabled
		if enabled {
			el.AddToRenderScene(e.render)
		} else {
			el.RemoveFromRenderScene(e.render)
		}
	})
}

// Edit applies a partial field patch to the element at r and recomputes its subtree.
// An "enabled" key is routed through the cascade. On error the element is unchanged.
func (e *Editor) Edit(ctx context.Context, r *scene.Ref, patch map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.edit(r, patch)
	if err != nil {
		e.logger.WarnContext(ctx, "edit rejected", "error", err)
	}
	e.finish(ctx, "edit", err)
	return err
}

func (e *Editor) edit(r *scene.Ref, patch map[string]any) error {
	if !e.contains(r) {
		return fmt.Errorf("edit: %w", domain.ErrInvalidReference)
	}
	el := r.Element()

	var enabled *bool
	if v, ok := patch[elements.KeyEnabled]; ok {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("field %q must be a boolean: %w", elements.KeyEnabled, domain.ErrMalformedJSON)
		}
		enabled = &b
	}

	// Registration can depend on the fields (a point light's marker), so re-register.
	registered := el.AsBase().Enabled
	if registered {
		el.RemoveFromRenderScene(e.render)
	}
	err := el.ApplyFields(patch)
	if registered {
		el.AddToRenderScene(e.render)
	}
	if err != nil {
		return err
	}

	scene.UpdateSubtree(r)
	if enabled != nil {
		e.setEnabled(r, *enabled)
	}
	return nil
}

// Move relinks the element at r, with its subtree, to target. Enabled flags and render
// registration are kept.
func (e *Editor) Move(ctx context.Context, r *scene.Ref, target InsertPoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.move(r, target)
	e.finish(ctx, "move", err)
	return err
}

func (e *Editor) move(r *scene.Ref, target InsertPoint) error {
	if !e.contains(r) {
		return fmt.Errorf("move: %w", domain.ErrInvalidReference)
	}
	list := e.tree.Root()
	if target.Parent != nil {
		if !e.contains(target.Parent) {
			return fmt.Errorf("move: target parent: %w", domain.ErrInvalidReference)
		}
		if scene.IsAncestorOrSelf(r, target.Parent) {
			return fmt.Errorf("move: cannot move an element under itself: %w", domain.ErrInvalidReference)
		}
		list = target.Parent.Element().Children()
		if list == nil {
			return fmt.Errorf("move: %s cannot hold children: %w", target.Parent.Element().TypeName(), domain.ErrInvalidReference)
		}
	}
	after := target.After
	if after == nil {
		after = list.Back()
	} else if after.List() != list {
		return fmt.Errorf("move: anchor is not in the target list: %w", domain.ErrInvalidReference)
	}

	list.MoveAfter(r, after)
	scene.UpdateSubtree(r)
	return nil
}
