package memory

import (
	"slices"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/render"
)

// RenderScene implements ports.RenderRegistry by recording membership in insertion order.
// It stands in for the GPU scene in headless runs and tests.
type RenderScene struct {
	mu       sync.RWMutex
	entities []*render.Entity
	lights   []render.Light

	inserts int
	removes int
}

// NewRenderScene creates an empty render scene.
func NewRenderScene() *RenderScene {
	return &RenderScene{}
}

func (s *RenderScene) InsertEntity(e *render.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if !slices.Contains(s.entities, e) {
		s.entities = append(s.entities, e)
	}
}

func (s *RenderScene) RemoveEntity(e *render.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes++
	s.entities = slices.DeleteFunc(s.entities, func(x *render.Entity) bool { return x == e })
}

func (s *RenderScene) InsertLight(l render.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if !slices.ContainsFunc(s.lights, func(x render.Light) bool { return x.LightID() == l.LightID() }) {
		s.lights = append(s.lights, l)
	}
}

func (s *RenderScene) RemoveLight(l render.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes++
	s.lights = slices.DeleteFunc(s.lights, func(x render.Light) bool { return x.LightID() == l.LightID() })
}

// Entities returns the registered entities in insertion order.
func (s *RenderScene) Entities() []*render.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entities)
}

// Lights returns the registered lights in insertion order.
func (s *RenderScene) Lights() []render.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

// HasEntity reports whether e is registered.
func (s *RenderScene) HasEntity(e *render.Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.entities, e)
}

// HasLight reports whether a light with the same handle is registered.
func (s *RenderScene) HasLight(l render.Light) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.lights, func(x render.Light) bool { return x.LightID() == l.LightID() })
}

// Calls returns how many insert and remove calls the scene received.
func (s *RenderScene) Calls() (inserts, removes int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inserts, s.removes
}

// Snapshot implements ports.Snapshotter.
func (s *RenderScene) Snapshot() domain.RenderSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.RenderSnapshot{
		Entities: make([]string, 0, len(s.entities)),
		Lights:   make([]string, 0, len(s.lights)),
	}
	for _, e := range s.entities {
		snap.Entities = append(snap.Entities, e.ID)
	}
	for _, l := range s.lights {
		snap.Lights = append(snap.Lights, l.LightID())
	}
	return snap
}
