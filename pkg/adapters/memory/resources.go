package memory

import (
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/render"
)

// Catalog implements ports.ResourceProvider over a fixed set of known model and texture
// names. Loading an unknown name fails with domain.ErrConstruction.
type Catalog struct {
	mu       sync.RWMutex
	models   map[string]bool
	textures map[string]bool
	animated map[string]bool
}

// NewCatalog creates a catalog holding the built-in models and the given extra models.
func NewCatalog(models ...string) *Catalog {
	c := &Catalog{
		models:   make(map[string]bool),
		textures: make(map[string]bool),
		animated: make(map[string]bool),
	}
	for _, m := range append([]string{domain.ModelCube, domain.ModelSphere, domain.ModelDoublePlane}, models...) {
		c.models[m] = true
	}
	return c
}

// AddModel makes a model loadable. Animated models carry skinning data.
func (c *Catalog) AddModel(name string, animated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[name] = true
	c.animated[name] = animated
}

// RemoveModel makes a model fail to load.
func (c *Catalog) RemoveModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.models, name)
}

// AddTexture makes a texture loadable.
func (c *Catalog) AddTexture(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textures[name] = true
}

func (c *Catalog) LoadModel(name string) (render.MeshHandle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.models[name] {
		return render.MeshHandle{}, fmt.Errorf("model %q not found: %w", name, domain.ErrConstruction)
	}
	return render.MeshHandle{ID: "mesh:" + name, Source: name, Animated: c.animated[name]}, nil
}

func (c *Catalog) LoadTexture(name string) (render.TextureHandle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.textures[name] {
		return render.TextureHandle{}, fmt.Errorf("texture %q not found: %w", name, domain.ErrConstruction)
	}
	return render.TextureHandle{ID: "texture:" + name, Source: name}, nil
}

func (c *Catalog) DefaultWhite() render.TextureHandle {
	return render.TextureHandle{ID: "texture:white"}
}
func (c *Catalog) DefaultBlack() render.TextureHandle {
	return render.TextureHandle{ID: "texture:black"}
}
