package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/render"
)

// animatedFormats are the model formats that may carry skinning data.
var animatedFormats = []string{".glb", ".gltf", ".fbx", ".dae"}

// Assets implements ports.ResourceProvider over a directory of model and texture files.
// Built-in models (cube, sphere, double plane) resolve even when absent from the directory.
type Assets struct {
	Dir string
}

// NewAssets creates a provider rooted at dir.
func NewAssets(dir string) *Assets {
	return &Assets{Dir: dir}
}

func (a *Assets) stat(kind, name string) error {
	if name == "" || strings.Contains(name, "..") {
		return fmt.Errorf("invalid %s name %q: %w", kind, name, domain.ErrConstruction)
	}
	info, err := os.Stat(filepath.Join(a.Dir, name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %q not found in %s: %w", kind, name, a.Dir, domain.ErrConstruction)
	case err != nil:
		return fmt.Errorf("failed to open %s %q: %w: %v", kind, name, domain.ErrConstruction, err)
	case info.IsDir():
		return fmt.Errorf("%s %q is a directory: %w", kind, name, domain.ErrConstruction)
	}
	return nil
}

func builtin(name string) bool {
	return name == domain.ModelCube || name == domain.ModelSphere || name == domain.ModelDoublePlane
}

func (a *Assets) LoadModel(name string) (render.MeshHandle, error) {
	if !builtin(name) {
		if err := a.stat("model", name); err != nil {
			return render.MeshHandle{}, err
		}
	}
	return render.MeshHandle{
		ID:       "mesh:" + name,
		Source:   name,
		Animated: slices.Contains(animatedFormats, strings.ToLower(filepath.Ext(name))),
	}, nil
}

func (a *Assets) LoadTexture(name string) (render.TextureHandle, error) {
	if err := a.stat("texture", name); err != nil {
		return render.TextureHandle{}, err
	}
	return render.TextureHandle{ID: "texture:" + name, Source: name}, nil
}

func (a *Assets) DefaultWhite() render.TextureHandle {
	return render.TextureHandle{ID: "texture:white"}
}
func (a *Assets) DefaultBlack() render.TextureHandle {
	return render.TextureHandle{ID: "texture:black"}
}
