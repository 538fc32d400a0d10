package ports

import "github.com/aretw0/arbor/pkg/render"

// ModelLoader loads mesh data keyed by file name.
// Failures must wrap domain.ErrConstruction.
type ModelLoader interface {
	LoadModel(name string) (render.MeshHandle, error)
}

// TextureProvider loads textures and hands out placeholder textures.
// Failures must wrap domain.ErrConstruction.
type TextureProvider interface {
	LoadTexture(name string) (render.TextureHandle, error)
	DefaultWhite() render.TextureHandle
	DefaultBlack() render.TextureHandle
}

// ResourceProvider bundles both loaders, as most adapters implement them together.
type ResourceProvider interface {
	ModelLoader
	TextureProvider
}
