package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/scene"
)

// DefaultFunc creates an element with default parameters, for interactive creation.
type DefaultFunc func(sc *scene.Context, parent *scene.Ref) (scene.Element, error)

// JSONFunc creates an element from its serialized form, for loading.
type JSONFunc func(sc *scene.Context, parent *scene.Ref, j map[string]any) (scene.Element, error)

// Entry describes one element variant.
type Entry struct {
	Tag      string
	Category domain.Category
	Default  DefaultFunc
	FromJSON JSONFunc
}

// Registry maps type tags to element factories. Entries keep registration order, which is
// the order creation menus list them in.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds a variant to the registry.
// If the tag is already registered, the entry is overwritten in place.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.Tag]; !ok {
		r.order = append(r.order, e.Tag)
	}
	r.entries[e.Tag] = e
}

// Lookup returns the entry registered for tag.
func (r *Registry) Lookup(tag string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[tag]
	return e, ok
}

// CreateDefault runs the default factory of tag.
// Returns an error wrapping domain.ErrUnknownTypeTag if the tag is not registered.
func (r *Registry) CreateDefault(sc *scene.Context, tag string, parent *scene.Ref) (scene.Element, error) {
	e, ok := r.Lookup(tag)
	if !ok || e.Default == nil {
		return nil, fmt.Errorf("no generator for label %q: %w", tag, domain.ErrUnknownTypeTag)
	}
	return e.Default(sc, parent)
}

// CreateFromJSON runs the JSON factory of tag.
// Returns an error wrapping domain.ErrUnknownTypeTag if the tag is not registered.
func (r *Registry) CreateFromJSON(sc *scene.Context, tag string, parent *scene.Ref, j map[string]any) (scene.Element, error) {
	e, ok := r.Lookup(tag)
	if !ok || e.FromJSON == nil {
		return nil, fmt.Errorf("no generator for label %q: %w", tag, domain.ErrUnknownTypeTag)
	}
	return e.FromJSON(sc, parent, j)
}

// Entries returns every entry in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.entries[tag])
	}
	return out
}

// ByCategory returns the entries of one creation menu in registration order.
func (r *Registry) ByCategory(c domain.Category) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}
