package render

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/scene"
)

var (
	red   = math3d.RGBA(1, 0, 0, 1)
	green = math3d.RGBA(0, 1, 0, 1)
	white = math3d.RGBA(1, 1, 1, 1)
)

// smallOptions renders a 20x10 image; pixel (10, 5) looks straight down +Z.
func smallOptions(workers int) Options {
	opts := DefaultOptions()
	opts.Width = 20
	opts.Height = 10
	opts.Workers = workers
	return opts
}

func renderScene(t *testing.T, s *scene.Scene, opts Options) *Framebuffer {
	t.Helper()
	fb, err := NewRaycaster(opts, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return fb
}

func expectedChannel(c, light float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, c*light*255))))
}

func TestViewportMapping(t *testing.T) {
	vp := NewViewport(scene.New(), smallOptions(1))

	tests := []struct {
		name     string
		x, y     int
		expected math3d.Vec3
	}{
		{"top left", 0, 0, math3d.V3(-0.99, 0.54, 1)},
		{"center", 10, 5, math3d.V3(0, 0, 1)},
		{"last pixel", 19, 9, math3d.V3(-0.99+1.98*19.0/20, 0.54-1.08*9.0/10, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := vp.PointAt(tc.x, tc.y)
			if got.Sub(tc.expected).Len() > 1e-12 {
				t.Errorf("PointAt(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.expected)
			}
			ray := vp.RayFor(tc.x, tc.y)
			if ray.Origin != math3d.Zero3() {
				t.Errorf("ray origin = %v, want camera at origin", ray.Origin)
			}
			if ray.Direction.Sub(tc.expected).Len() > 1e-12 {
				t.Errorf("ray direction = %v, want %v (unnormalized)", ray.Direction, tc.expected)
			}
		})
	}
}

func TestViewportFollowsScene(t *testing.T) {
	s := scene.New()
	s.Camera = math3d.V3(1, 0, 0)
	s.Viewport = math3d.V3(1, 0, 2)
	vp := NewViewport(s, smallOptions(1))

	ray := vp.RayFor(10, 5)
	if ray.Origin != s.Camera {
		t.Errorf("ray origin = %v, want %v", ray.Origin, s.Camera)
	}
	if ray.Direction.Sub(math3d.V3(0, 0, 2)).Len() > 1e-12 {
		t.Errorf("ray direction = %v, want (0, 0, 2)", ray.Direction)
	}
}

func TestNearestHitPicksCloserSphere(t *testing.T) {
	far := scene.NewSphere(math3d.V3(0, 0, 5), 1, red)
	near := scene.NewSphere(math3d.V3(0, 0, 3), 0.5, green)
	ray := math3d.NewRay(math3d.Zero3(), math3d.V3(0, 0, 1))

	for _, roots := range []scene.RootFormula{scene.RootsRawDiscriminant, scene.RootsQuadratic} {
		for _, order := range [][]scene.Sphere{{far, near}, {near, far}} {
			hit, ok := NearestHit(order, ray, roots)
			if !ok {
				t.Fatalf("%v: expected a hit", roots)
			}
			if hit.Color != green {
				t.Errorf("%v: color = %v, want the nearer sphere's", roots, hit.Color)
			}
			if hit.Point.Sub(math3d.V3(0, 0, 2.5)).Len() > 1e-9 {
				t.Errorf("%v: point = %v, want (0, 0, 2.5)", roots, hit.Point)
			}
			if hit.Normal.Sub(math3d.V3(0, 0, -0.5)).Len() > 1e-9 {
				t.Errorf("%v: normal = %v, want unnormalized (0, 0, -0.5)", roots, hit.Normal)
			}
		}
	}
}

func TestNearestHitTieKeepsFirst(t *testing.T) {
	a := scene.NewSphere(math3d.V3(0, 0, 3), 0.5, red)
	b := scene.NewSphere(math3d.V3(0, 0, 3), 0.5, green)
	ray := math3d.NewRay(math3d.Zero3(), math3d.V3(0, 0, 1))

	hit, ok := NearestHit([]scene.Sphere{a, b}, ray, scene.RootsQuadratic)
	if !ok || hit.Color != red {
		t.Errorf("hit = %v (ok=%v), want the first sphere", hit, ok)
	}
}

func TestNearestHitNone(t *testing.T) {
	ray := math3d.NewRay(math3d.Zero3(), math3d.V3(0, 0, 1))
	if _, ok := NearestHit(nil, ray, scene.RootsRawDiscriminant); ok {
		t.Error("expected no hit in an empty scene")
	}
	behind := []scene.Sphere{scene.NewSphere(math3d.V3(0, 0, -3), 1, red)}
	if _, ok := NearestHit(behind, ray, scene.RootsRawDiscriminant); ok {
		t.Error("expected no hit for a sphere behind the camera")
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name     string
		color    math3d.Vec4
		light    float64
		expected color.RGBA
	}{
		{"full", math3d.RGBA(1, 0.5, 0, 0.3), 1, color.RGBA{255, 128, 0, 255}},
		{"dark", math3d.RGBA(1, 1, 1, 1), 0, color.RGBA{0, 0, 0, 255}},
		{"over bright clamps", math3d.RGBA(0.5, 0.9, 0.1, 1), 5, color.RGBA{255, 255, 128, 255}},
		{"negative clamps", math3d.RGBA(0.5, 0.5, 0.5, 1), -1, color.RGBA{0, 0, 0, 255}},
		{"nan", math3d.RGBA(math.NaN(), 1, 1, 1), 1, color.RGBA{0, 255, 255, 255}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Quantize(tc.color, tc.light); got != tc.expected {
				t.Errorf("Quantize = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestRenderNearestSphereColor(t *testing.T) {
	s := scene.New().
		AddSphere(scene.NewSphere(math3d.V3(0, 0, 5), 1, red)).
		AddSphere(scene.NewSphere(math3d.V3(0, 0, 3), 0.5, green)).
		AddLight(scene.AmbientLight{Intensity: 1})

	fb := renderScene(t, s, smallOptions(1))
	if got := fb.GetPixel(10, 5); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("center pixel = %v, want opaque green", got)
	}
}

func TestRenderAmbientOnly(t *testing.T) {
	c := math3d.RGBA(0.3, 0.6, 0.9, 0.5)
	s := scene.New().
		AddSphere(scene.NewSphere(math3d.V3(0, 0, 3), 1.5, c)).
		AddLight(scene.AmbientLight{Intensity: 0.2})

	opts := smallOptions(1)
	fb := renderScene(t, s, opts)
	vp := NewViewport(s, opts)

	want := color.RGBA{
		R: expectedChannel(c.X, 0.2),
		G: expectedChannel(c.Y, 0.2),
		B: expectedChannel(c.Z, 0.2),
		A: 255,
	}
	hits := 0
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			if _, ok := NearestHit(s.Objects, vp.RayFor(x, y), opts.Roots); !ok {
				continue
			}
			hits++
			if got := fb.GetPixel(x, y); got != want {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if hits == 0 {
		t.Fatal("test scene produced no hit pixels")
	}
}

func TestRenderPointLightBackFace(t *testing.T) {
	s := scene.New().
		AddSphere(scene.NewSphere(math3d.V3(0, 0, 3), 0.5, white)).
		AddLight(scene.AmbientLight{Intensity: 0.1}).
		AddLight(scene.PointLight{Intensity: 1, Position: math3d.V3(0, 0, 10)})

	fb := renderScene(t, s, smallOptions(1))
	v := expectedChannel(1, 0.1)
	if got := fb.GetPixel(10, 5); got != (color.RGBA{v, v, v, 255}) {
		t.Errorf("center pixel = %v, want ambient only (%d)", got, v)
	}
}

func TestRenderPointLightFacing(t *testing.T) {
	s := scene.New().
		AddSphere(scene.NewSphere(math3d.V3(0, 0, 3), 0.5, white)).
		AddLight(scene.PointLight{Intensity: 1, Position: math3d.V3(0, 0, 1)})

	fb := renderScene(t, s, smallOptions(1))
	// hit (0, 0, 2.5), normal (0, 0, -0.5), light vector (0, 0, -1.5)
	v := expectedChannel(1, 0.75/1.5)
	if got := fb.GetPixel(10, 5); got != (color.RGBA{v, v, v, 255}) {
		t.Errorf("center pixel = %v, want %d", got, v)
	}
}

func TestRenderNoHitIsOpaqueBlack(t *testing.T) {
	s := scene.Random(11, 40)
	opts := smallOptions(1)
	opts.Width, opts.Height = 64, 36
	fb := renderScene(t, s, opts)
	vp := NewViewport(s, opts)

	misses := 0
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			if _, ok := NearestHit(s.Objects, vp.RayFor(x, y), opts.Roots); ok {
				continue
			}
			misses++
			if got := fb.GetPixel(x, y); got != ColorBlack {
				t.Fatalf("pixel (%d, %d) = %v, want opaque black", x, y, got)
			}
		}
	}
	if misses == 0 {
		t.Fatal("test scene covered every pixel")
	}

	empty := renderScene(t, scene.New().AddLight(scene.AmbientLight{Intensity: 3}), opts)
	for i, p := range empty.Pixels {
		if p != ColorBlack {
			t.Fatalf("pixel %d of an empty scene = %v", i, p)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	s := scene.Random(5, 0)
	s.AddLight(scene.DirectionalLight{Intensity: 0.5, Direction: math3d.V3(0, -1, 0.2)})

	base := smallOptions(1)
	base.Width, base.Height = 96, 54
	first := renderScene(t, s, base)

	for _, workers := range []int{1, 3, 8, 0} {
		opts := base
		opts.Workers = workers
		if fb := renderScene(t, s, opts); !fb.Equal(first) {
			t.Errorf("workers=%d produced a different image", workers)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	for _, workers := range []int{1, 4} {
		var got []int
		opts := smallOptions(workers)
		opts.Width, opts.Height = 50, 30
		opts.Progress = func(pct int) { got = append(got, pct) }

		renderScene(t, scene.Random(1, 5), opts)

		if len(got) != 100 {
			t.Fatalf("workers=%d: got %d progress events, want 100", workers, len(got))
		}
		for i, pct := range got {
			if pct != i+1 {
				t.Fatalf("workers=%d: event %d = %d, want %d", workers, i, pct, i+1)
			}
		}
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := NewRaycaster(smallOptions(workers), nil).Render(ctx, scene.Random(1, 5))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: err = %v, want context.Canceled", workers, err)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Width != 1920 || opts.Height != 1080 {
		t.Errorf("resolution = %dx%d, want 1920x1080", opts.Width, opts.Height)
	}
	if opts.ViewportWidth != 1.98 || opts.ViewportHeight != 1.08 {
		t.Errorf("viewport = %vx%v, want 1.98x1.08", opts.ViewportWidth, opts.ViewportHeight)
	}
	if opts.Roots != scene.RootsRawDiscriminant {
		t.Errorf("roots = %v, want raw", opts.Roots)
	}
}

func BenchmarkRenderRandomScene(b *testing.B) {
	s := scene.Random(42, 0)
	opts := DefaultOptions()
	opts.Width, opts.Height = 192, 108
	opts.Workers = 1
	rc := NewRaycaster(opts, nil)

	for b.Loop() {
		if _, err := rc.Render(context.Background(), s); err != nil {
			b.Fatal(err)
		}
	}
}

func TestRenderRejectsEmptyImage(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -4, -3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := smallOptions(1)
			opts.Width, opts.Height = tc.width, tc.height
			fb, err := NewRaycaster(opts, nil).Render(context.Background(), scene.Random(1, 3))
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("err = %v, want ErrInvalidSize", err)
			}
			if fb != nil {
				t.Error("expected no framebuffer")
			}
		})
	}
}
