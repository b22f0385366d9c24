package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/raycast/pkg/math3d"
)

var (
	// ErrInvalidScene is wrapped by every Validate failure.
	ErrInvalidScene = errors.New("invalid scene")
	// ErrUnknownLight is returned for light kinds the caster cannot shade.
	ErrUnknownLight = errors.New("unknown light type")
)

// Scene is everything a render reads. Objects and Lights are evaluated in
// order; the light sum does not depend on it.
type Scene struct {
	Camera   math3d.Vec3 // ray origin for every pixel
	Viewport math3d.Vec3 // center of the viewport rectangle
	Objects  []Sphere
	Lights   []Light
}

// New creates an empty scene with the camera at the origin looking through
// a viewport centered one unit down +Z.
func New() *Scene {
	return &Scene{
		Camera:   math3d.Zero3(),
		Viewport: math3d.V3(0, 0, 1),
	}
}

// AddSphere appends a sphere and returns the scene for chaining.
func (s *Scene) AddSphere(sp Sphere) *Scene {
	s.Objects = append(s.Objects, sp)
	return s
}

// AddLight appends a light and returns the scene for chaining.
func (s *Scene) AddLight(l Light) *Scene {
	s.Lights = append(s.Lights, l)
	return s
}

// Validate rejects scenes a loaded file could carry but the caster cannot
// interpret: non-finite coordinates and nil lights. Zero and negative radii
// are allowed.
func (s *Scene) Validate() error {
	if !s.Camera.IsFinite() {
		return fmt.Errorf("%w: camera %v is not finite", ErrInvalidScene, s.Camera)
	}
	if !s.Viewport.IsFinite() {
		return fmt.Errorf("%w: viewport %v is not finite", ErrInvalidScene, s.Viewport)
	}
	for i, sp := range s.Objects {
		if !sp.Center.IsFinite() || math.IsNaN(sp.Radius) || math.IsInf(sp.Radius, 0) {
			return fmt.Errorf("%w: sphere %d is not finite", ErrInvalidScene, i)
		}
	}
	for i, l := range s.Lights {
		switch l := l.(type) {
		case nil:
			return fmt.Errorf("%w: light %d is nil", ErrInvalidScene, i)
		case PointLight:
			if !l.Position.IsFinite() {
				return fmt.Errorf("%w: light %d position is not finite", ErrInvalidScene, i)
			}
		case DirectionalLight:
			if !l.Direction.IsFinite() {
				return fmt.Errorf("%w: light %d direction is not finite", ErrInvalidScene, i)
			}
		}
	}
	return nil
}
