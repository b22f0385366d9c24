package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/scene"
)

// ErrInvalidSize is returned by Render for a non-positive output size.
var ErrInvalidSize = errors.New("image size must be positive")

// Options controls output resolution, viewport size and parallelism.
type Options struct {
	Width          int     // output pixels
	Height         int     // output pixels
	ViewportWidth  float64 // world units
	ViewportHeight float64 // world units

	// Workers is the number of rows rendered at once. 0 uses the CPU count;
	// 1 renders sequentially. The image is identical either way.
	Workers int

	Roots scene.RootFormula

	// Progress, when set, is called with each integer percentage of
	// completed pixels as it is crossed. Calls are serialized.
	Progress func(percent int)
}

// DefaultOptions returns a full HD render through a 1.98 x 1.08 viewport.
func DefaultOptions() Options {
	return Options{
		Width:          1920,
		Height:         1080,
		ViewportWidth:  1.980,
		ViewportHeight: 1.080,
		Workers:        0,
		Roots:          scene.RootsRawDiscriminant,
	}
}

// Hit is the nearest surface point found along a ray.
type Hit struct {
	Point  math3d.Vec3
	Normal math3d.Vec3 // Point - Center, not normalized
	Color  math3d.Vec4
}

// NearestHit tests the ray against every sphere and returns the hit point
// closest to the ray origin. On equal distances the earlier sphere (and
// the earlier point of a sphere) wins.
func NearestHit(objects []scene.Sphere, ray math3d.Ray, roots scene.RootFormula) (Hit, bool) {
	var (
		nearest Hit
		best    float64
		found   bool
	)
	for _, sp := range objects {
		for _, p := range sp.Intersect(ray, roots) {
			d := p.Sub(ray.Origin).LenSq()
			if found && d >= best {
				continue
			}
			best = d
			found = true
			nearest = Hit{
				Point:  p,
				Normal: p.Sub(sp.Center),
				Color:  sp.Color,
			}
		}
	}
	return nearest, found
}

// Quantize scales the color's RGB channels by light and converts them to
// 8 bits, clamping to [0, 255] and rounding to the nearest value. Alpha is
// always opaque.
func Quantize(c math3d.Vec4, light float64) color.RGBA {
	return color.RGBA{
		R: channel(c.X * light),
		G: channel(c.Y * light),
		B: channel(c.Z * light),
		A: 255,
	}
}

func channel(v float64) uint8 {
	v *= 255
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// Raycaster renders scenes with a fixed set of options.
type Raycaster struct {
	opts   Options
	logger Logger
}

// NewRaycaster creates a raycaster. A nil logger discards progress output.
func NewRaycaster(opts Options, logger Logger) *Raycaster {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Raycaster{opts: opts, logger: logger}
}

// Options returns the options the raycaster was created with.
func (rc *Raycaster) Options() Options {
	return rc.opts
}

// Shade returns the color of pixel (x, y). It depends only on the scene,
// the viewport and the coordinates.
func (rc *Raycaster) Shade(s *scene.Scene, vp Viewport, x, y int) color.RGBA {
	ray := vp.RayFor(x, y)
	hit, ok := NearestHit(s.Objects, ray, rc.opts.Roots)
	if !ok {
		return ColorBlack
	}
	light := scene.TotalIntensity(s.Lights, hit.Normal, hit.Point)
	return Quantize(hit.Color, light)
}

// Render casts one ray per pixel and returns the shaded framebuffer. The
// scene is only read. It fails when the options ask for an empty image or
// when ctx is cancelled before every row is done.
func (rc *Raycaster) Render(ctx context.Context, s *scene.Scene) (*Framebuffer, error) {
	if rc.opts.Width <= 0 || rc.opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, rc.opts.Width, rc.opts.Height)
	}
	rc.logger.Printf("Beginning render of %d spheres, %d lights at %dx%d", len(s.Objects), len(s.Lights), rc.opts.Width, rc.opts.Height)

	fb := NewFramebuffer(rc.opts.Width, rc.opts.Height)
	rc.logger.Printf("1 / 3 | Generated blank image buffer")

	vp := NewViewport(s, rc.opts)
	prog := newProgress(fb.Width*fb.Height, func(pct int) {
		if pct%10 == 0 {
			rc.logger.Printf("2 / 3 | Casting rays... %d%%", pct)
		}
		if rc.opts.Progress != nil {
			rc.opts.Progress(pct)
		}
	})

	renderRow := func(y int) {
		row := fb.Row(y)
		for x := range row {
			row[x] = rc.Shade(s, vp, x, y)
		}
		prog.add(len(row))
	}

	workers := rc.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if workers == 1 {
		for y := 0; y < fb.Height; y++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			renderRow(y)
		}
		return fb, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < fb.Height; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each row is written by exactly one goroutine
			renderRow(y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fb, nil
}

// progress turns completed pixel counts into integer percentage events.
type progress struct {
	total    int64
	done     atomic.Int64
	mu       sync.Mutex
	reported int
	notify   func(percent int)
}

func newProgress(total int, notify func(int)) *progress {
	return &progress{total: int64(total), notify: notify}
}

func (p *progress) add(n int) {
	if p.total == 0 {
		return
	}
	done := p.done.Add(int64(n))
	pct := int(done * 100 / p.total)

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.reported < pct {
		p.reported++
		p.notify(p.reported)
	}
}
