package scene

import (
	"math/rand"

	"github.com/taigrr/raycast/pkg/math3d"
)

// DefaultSphereCount is the number of spheres Random places when asked
// for zero or fewer.
const DefaultSphereCount = 70

// Random scatters n small spheres in front of the camera and lights them
// with a dim ambient term and one point light behind the cloud. The same
// seed always yields the same scene.
func Random(seed int64, n int) *Scene {
	if n <= 0 {
		n = DefaultSphereCount
	}
	rng := rand.New(rand.NewSource(seed))

	s := New()
	origin := math3d.V3(0, 0, 2)
	for range n {
		offset := math3d.V3(
			float64(rng.Intn(20)-10)/2,
			float64(rng.Intn(20)-10)/3,
			float64(rng.Intn(20))/3,
		)
		color := math3d.RGBA(
			float64(rng.Intn(100))/100,
			float64(rng.Intn(100))/100,
			float64(rng.Intn(100))/100,
			1,
		)
		s.AddSphere(NewSphere(origin.Add(offset), 0.25, color))
	}

	s.AddLight(AmbientLight{Intensity: 0.2})
	s.AddLight(PointLight{Intensity: 5.0, Position: math3d.V3(0, 0, 4)})
	return s
}
