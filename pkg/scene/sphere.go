// Package scene holds the objects and lights a render reads from.
package scene

import (
	"fmt"
	"math"

	"github.com/taigrr/raycast/pkg/math3d"
)

// RootFormula selects how Sphere.Intersect turns the discriminant into
// parametric roots.
type RootFormula int

const (
	// RootsRawDiscriminant forms t = (-b ± disc) / 2a without taking the
	// square root of the discriminant. Existing renders depend on it, so it
	// is the default.
	RootsRawDiscriminant RootFormula = iota
	// RootsQuadratic is the textbook t = (-b ± sqrt(disc)) / 2a.
	RootsQuadratic
)

// String returns the flag spelling of the formula.
func (f RootFormula) String() string {
	switch f {
	case RootsQuadratic:
		return "quadratic"
	default:
		return "raw"
	}
}

// ParseRootFormula is the inverse of RootFormula.String.
func ParseRootFormula(s string) (RootFormula, error) {
	switch s {
	case "", "raw":
		return RootsRawDiscriminant, nil
	case "quadratic":
		return RootsQuadratic, nil
	default:
		return 0, fmt.Errorf("unknown root formula %q (want raw or quadratic)", s)
	}
}

// Sphere is a colored sphere. It is never modified once a render starts.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
	Color  math3d.Vec4
}

// NewSphere creates a new sphere.
func NewSphere(center math3d.Vec3, radius float64, color math3d.Vec4) Sphere {
	return Sphere{
		Center: center,
		Radius: radius,
		Color:  color,
	}
}

// Intersect returns the world-space points where the ray meets the sphere
// in front of its origin (t > 0). The result holds zero, one or two points;
// with two roots the (-b + ...) root comes first.
func (s Sphere) Intersect(ray math3d.Ray, formula RootFormula) []math3d.Vec3 {
	// Quadratic coefficients of |O + tD - C|² = r²
	a := ray.Direction.LenSq()
	if a == 0 {
		return nil
	}
	co := ray.Origin.Sub(s.Center)
	b := 2 * co.Dot(ray.Direction)
	c := co.LenSq() - s.Radius*s.Radius

	discriminant := b*b - 4*a*c

	switch {
	case discriminant < 0 || math.IsNaN(discriminant):
		return nil
	case discriminant == 0:
		t := -b / (2 * a)
		if !forward(t) {
			return nil
		}
		return []math3d.Vec3{ray.At(t)}
	}

	spread := discriminant
	if formula == RootsQuadratic {
		spread = math.Sqrt(discriminant)
	}
	t1 := (-b + spread) / (2 * a)
	t2 := (-b - spread) / (2 * a)

	hits := make([]math3d.Vec3, 0, 2)
	if forward(t1) {
		hits = append(hits, ray.At(t1))
	}
	if forward(t2) {
		hits = append(hits, ray.At(t2))
	}
	return hits
}

// forward reports whether t is a usable root in front of the ray origin.
func forward(t float64) bool {
	return t > 0 && !math.IsInf(t, 0)
}
