package math3d

// Ray is a half-line O + tD. The direction is not normalized: the sphere
// intersection relies on its magnitude.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
