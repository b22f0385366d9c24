package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/taigrr/raycast/pkg/models"
	"github.com/taigrr/raycast/pkg/render"
	"github.com/taigrr/raycast/pkg/scene"
)

// sceneFlags selects where the scene comes from.
type sceneFlags struct {
	path    string
	seed    int64
	spheres int
}

func (f *sceneFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.path, "scene", "", "scene file (.json, .gltf or .glb); random scene when empty")
	fs.Int64Var(&f.seed, "seed", 0, "random scene seed (time based when unset)")
	fs.IntVar(&f.spheres, "spheres", scene.DefaultSphereCount, "number of spheres in a random scene (at least 1)")
}

// resolveSeed picks a time based seed unless --seed was given.
func (f *sceneFlags) resolveSeed(fs *pflag.FlagSet) {
	if !fs.Changed("seed") {
		f.seed = time.Now().UnixNano()
	}
}

// load builds the scene described by the flags.
func (f *sceneFlags) load() (*scene.Scene, error) {
	if f.path == "" {
		if f.spheres < 1 {
			return nil, fmt.Errorf("sphere count must be at least 1, got %d", f.spheres)
		}
		return scene.Random(f.seed, f.spheres), nil
	}
	return loadSceneFile(f.path)
}

func loadSceneFile(path string) (*scene.Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return scene.Load(path)
	case ".gltf", ".glb":
		return models.LoadScene(path)
	default:
		return nil, fmt.Errorf("unsupported scene format: %q (use .json, .gltf or .glb)", ext)
	}
}

// optionFlags mirrors render.Options on the command line.
type optionFlags struct {
	width          int
	height         int
	viewportWidth  float64
	viewportHeight float64
	workers        int
	roots          string
}

func (f *optionFlags) register(fs *pflag.FlagSet) {
	def := render.DefaultOptions()
	fs.IntVar(&f.width, "width", def.Width, "output width in pixels")
	fs.IntVar(&f.height, "height", def.Height, "output height in pixels")
	fs.Float64Var(&f.viewportWidth, "viewport-width", def.ViewportWidth, "viewport width in world units")
	fs.Float64Var(&f.viewportHeight, "viewport-height", def.ViewportHeight, "viewport height in world units")
	fs.IntVar(&f.workers, "workers", def.Workers, "rows rendered in parallel (0 = CPU count, 1 = sequential)")
	fs.StringVar(&f.roots, "roots", def.Roots.String(), "intersection root formula: raw or quadratic")
}

func (f *optionFlags) options() (render.Options, error) {
	roots, err := scene.ParseRootFormula(f.roots)
	if err != nil {
		return render.Options{}, err
	}
	if f.width <= 0 || f.height <= 0 {
		return render.Options{}, fmt.Errorf("image size must be positive, got %dx%d", f.width, f.height)
	}
	if f.viewportWidth <= 0 || f.viewportHeight <= 0 {
		return render.Options{}, fmt.Errorf("viewport size must be positive, got %gx%g", f.viewportWidth, f.viewportHeight)
	}

	opts := render.DefaultOptions()
	opts.Width = f.width
	opts.Height = f.height
	opts.ViewportWidth = f.viewportWidth
	opts.ViewportHeight = f.viewportHeight
	opts.Workers = f.workers
	opts.Roots = roots
	return opts, nil
}
