package scene

import (
	"math"

	"github.com/taigrr/raycast/pkg/math3d"
)

// Light contributes a scalar intensity to a surface point. normal is the
// unnormalized surface normal at pos.
type Light interface {
	IntensityAt(normal, pos math3d.Vec3) float64
}

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Intensity float64
}

// IntensityAt returns the fixed ambient intensity.
func (l AmbientLight) IntensityAt(_, _ math3d.Vec3) float64 {
	return l.Intensity
}

// PointLight radiates from Position.
type PointLight struct {
	Intensity float64
	Position  math3d.Vec3
}

// IntensityAt falls off with the inverse of the distance to the light, not
// its square.
func (l PointLight) IntensityAt(normal, pos math3d.Vec3) float64 {
	return falloff(l.Intensity, normal, l.Position.Sub(pos))
}

// DirectionalLight shines along Direction. Position is carried for scene
// files but does not affect the result.
type DirectionalLight struct {
	Intensity float64
	Direction math3d.Vec3
	Position  math3d.Vec3
}

// IntensityAt divides by the length of Direction itself, so the result does
// not depend on pos.
func (l DirectionalLight) IntensityAt(normal, _ math3d.Vec3) float64 {
	return falloff(l.Intensity, normal, l.Direction.Negate())
}

func falloff(intensity float64, normal, toLight math3d.Vec3) float64 {
	alignment := normal.Dot(toLight)
	if alignment < 0 {
		return 0
	}
	dist := math.Sqrt(toLight.LenSq())
	if dist == 0 {
		// light sits on the surface point
		return 0
	}
	return intensity * alignment / dist
}

// TotalIntensity sums the contribution of every light. The sum is not
// clamped.
func TotalIntensity(lights []Light, normal, pos math3d.Vec3) float64 {
	var total float64
	for _, l := range lights {
		total += l.IntensityAt(normal, pos)
	}
	return total
}
