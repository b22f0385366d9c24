package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/render"
	"github.com/taigrr/raycast/pkg/scene"
)

// lightStep is how far one key press moves the light target.
const lightStep = 0.5

func newPreviewCmd() *cobra.Command {
	var (
		sf     sceneFlags
		roots  string
		vh     float64
		work   int
		fps    int
		status bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "View a scene in the terminal",
		Long: "preview ray casts the scene at terminal resolution, two pixels per cell.\n\n" +
			"Controls:\n" +
			"  A/D, left/right  move the point light along X\n" +
			"  W/S, up/down     move the point light along Y\n" +
			"  Z/X              move the point light along Z\n" +
			"  R                reset the light\n" +
			"  ?                toggle the status line\n" +
			"  Q, Esc, Ctrl+C   quit",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf.resolveSeed(cmd.Flags())
			if fps <= 0 {
				return fmt.Errorf("fps must be positive, got %d", fps)
			}
			rf, err := scene.ParseRootFormula(roots)
			if err != nil {
				return err
			}
			s, err := sf.load()
			if err != nil {
				return err
			}

			opts := render.DefaultOptions()
			opts.ViewportHeight = vh
			opts.Workers = work
			opts.Roots = rf
			return runPreview(cmd.Context(), s, opts, fps, status)
		},
	}

	def := render.DefaultOptions()
	sf.register(cmd.Flags())
	cmd.Flags().StringVar(&roots, "roots", def.Roots.String(), "intersection root formula: raw or quadratic")
	cmd.Flags().Float64Var(&vh, "viewport-height", def.ViewportHeight, "viewport height in world units; width follows the terminal")
	cmd.Flags().IntVar(&work, "workers", def.Workers, "rows rendered in parallel (0 = CPU count)")
	cmd.Flags().IntVar(&fps, "fps", 30, "target frames per second")
	cmd.Flags().BoolVar(&status, "status", true, "show the status line")
	return cmd
}

// lightRig springs the scene's first point light toward a target position.
type lightRig struct {
	idx    int // -1 when the scene has no point light
	home   math3d.Vec3
	target math3d.Vec3
	pos    math3d.Vec3
	vel    [3]float64
	spring harmonica.Spring
}

func newLightRig(s *scene.Scene, fps int) *lightRig {
	r := &lightRig{
		idx: -1,
		// Frequency 6.0 with damping 0.6 gives a short, visible overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.6),
	}
	for i, l := range s.Lights {
		if pl, ok := l.(scene.PointLight); ok {
			r.idx = i
			r.home = pl.Position
			r.target = pl.Position
			r.pos = pl.Position
			break
		}
	}
	return r
}

func (r *lightRig) Active() bool {
	return r.idx >= 0
}

func (r *lightRig) Nudge(d math3d.Vec3) {
	r.target = r.target.Add(d)
}

func (r *lightRig) Reset() {
	r.target = r.home
}

// Step advances the spring one frame and writes the light position back
// into s. It reports whether the light moved.
func (r *lightRig) Step(s *scene.Scene) bool {
	if !r.Active() {
		return false
	}
	prev := r.pos
	r.pos.X, r.vel[0] = r.spring.Update(r.pos.X, r.vel[0], r.target.X)
	r.pos.Y, r.vel[1] = r.spring.Update(r.pos.Y, r.vel[1], r.target.Y)
	r.pos.Z, r.vel[2] = r.spring.Update(r.pos.Z, r.vel[2], r.target.Z)

	// snap once the motion is below what a terminal cell can show
	const settle = 1e-4
	if r.pos.Sub(r.target).LenSq() < settle*settle &&
		math.Abs(r.vel[0])+math.Abs(r.vel[1])+math.Abs(r.vel[2]) < settle {
		r.pos = r.target
		r.vel = [3]float64{}
	}

	if pl, ok := s.Lights[r.idx].(scene.PointLight); ok {
		pl.Position = r.pos
		s.Lights[r.idx] = pl
	}
	return prev != r.pos
}

// previewOptions sizes the render to a terminal of cols x rows cells. Each
// cell holds two vertically stacked pixels, so pixels are roughly square and
// the viewport width follows the pixel aspect ratio.
func previewOptions(base render.Options, cols, rows int) render.Options {
	opts := base
	opts.Width = max(cols, 1)
	opts.Height = max(rows*2, 2)
	opts.ViewportWidth = base.ViewportHeight * float64(opts.Width) / float64(opts.Height)
	opts.Progress = nil
	return opts
}

// keyAction applies a key press to the rig. It reports whether the preview
// should quit.
func keyAction(ev uv.KeyPressEvent, rig *lightRig, showStatus *bool) bool {
	switch {
	case ev.MatchString("q", "escape", "ctrl+c"):
		return true
	case ev.MatchString("a", "left"):
		rig.Nudge(math3d.V3(-lightStep, 0, 0))
	case ev.MatchString("d", "right"):
		rig.Nudge(math3d.V3(lightStep, 0, 0))
	case ev.MatchString("w", "up"):
		rig.Nudge(math3d.V3(0, lightStep, 0))
	case ev.MatchString("s", "down"):
		rig.Nudge(math3d.V3(0, -lightStep, 0))
	case ev.MatchString("z"):
		rig.Nudge(math3d.V3(0, 0, -lightStep))
	case ev.MatchString("x"):
		rig.Nudge(math3d.V3(0, 0, lightStep))
	case ev.MatchString("r"):
		rig.Reset()
	case ev.MatchString("?", "shift+/"):
		*showStatus = !*showStatus
	}
	return false
}

// statusLine describes the preview state.
func statusLine(s *scene.Scene, rig *lightRig, frame time.Duration) string {
	light := "no point light"
	if rig.Active() {
		light = "light " + rig.pos.String()
	}
	return fmt.Sprintf(" %d spheres | %s | %s/frame ", len(s.Objects), light, frame.Round(time.Millisecond))
}

// drawStatus writes text on row y over a black background.
func drawStatus(scr uv.Screen, y, width int, text string) {
	x := 0
	for _, r := range text {
		if x >= width {
			break
		}
		scr.SetCell(x, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: render.ColorWhite, Bg: render.ColorBlack},
		})
		x++
	}
}

func runPreview(ctx context.Context, s *scene.Scene, base render.Options, fps int, showStatus bool) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	rig := newLightRig(s, fps)
	events := term.Events()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	dirty := true
	var frame time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				dirty = true
			case uv.KeyPressEvent:
				prevStatus := showStatus
				if keyAction(ev, rig, &showStatus) {
					return nil
				}
				if showStatus != prevStatus {
					dirty = true
				}
			}

		case <-ticker.C:
			if rig.Step(s) {
				dirty = true
			}
			if !dirty {
				continue
			}

			start := time.Now()
			fb, err := render.NewRaycaster(previewOptions(base, width, height), nil).Render(ctx, s)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("render: %w", err)
			}
			frame = time.Since(start)

			area := uv.Rect(0, 0, width, height)
			fb.Draw(term, area)
			if showStatus && height > 0 {
				drawStatus(term, height-1, width, statusLine(s, rig, frame))
			}
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
			dirty = false
		}
	}
}
