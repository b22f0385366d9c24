package render

import (
	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/scene"
)

// Viewport maps output pixels onto a rectangle in world space. Its size is
// independent of the output resolution.
//
// The camera faces +Z with +Y up and +X right. The rectangle is centered on
// the scene's viewport point, so with the default scene it spans
// (-w/2, h/2, 1) at the top left to (w/2, -h/2, 1) at the bottom right.
type Viewport struct {
	Camera  math3d.Vec3
	TopLeft math3d.Vec3
	Width   float64 // world units
	Height  float64 // world units
	Cols    int     // output pixels
	Rows    int     // output pixels
}

// NewViewport creates the viewport for rendering s at the options'
// resolution.
func NewViewport(s *scene.Scene, opts Options) Viewport {
	return Viewport{
		Camera:  s.Camera,
		TopLeft: s.Viewport.Add(math3d.V3(-opts.ViewportWidth/2, opts.ViewportHeight/2, 0)),
		Width:   opts.ViewportWidth,
		Height:  opts.ViewportHeight,
		Cols:    opts.Width,
		Rows:    opts.Height,
	}
}

// PointAt returns the world point that pixel (x, y) maps to.
func (v Viewport) PointAt(x, y int) math3d.Vec3 {
	return v.TopLeft.Add(math3d.V3(
		v.Width*(float64(x)/float64(v.Cols)),
		-v.Height*(float64(y)/float64(v.Rows)),
		0,
	))
}

// RayFor builds the ray through pixel (x, y). The direction is left
// unnormalized.
func (v Viewport) RayFor(x, y int) math3d.Ray {
	return math3d.NewRay(v.Camera, v.PointAt(x, y).Sub(v.Camera))
}
