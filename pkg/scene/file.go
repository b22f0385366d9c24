package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/taigrr/raycast/pkg/math3d"
)

// Light type names used in scene files.
const (
	LightAmbient     = "ambient"
	LightPoint       = "point"
	LightDirectional = "directional"
)

// FileConfig is the JSON form of a Scene.
type FileConfig struct {
	Camera   [3]float64  `json:"camera"`
	Viewport [3]float64  `json:"viewport"`
	Spheres  []SphereCfg `json:"spheres"`
	Lights   []LightCfg  `json:"lights"`
}

type SphereCfg struct {
	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
	Color  [4]float64 `json:"color"`
}

type LightCfg struct {
	Type      string      `json:"type"`
	Intensity float64     `json:"intensity"`
	Position  *[3]float64 `json:"position,omitempty"`
	Direction *[3]float64 `json:"direction,omitempty"`
}

// Load reads and validates a JSON scene file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode reads a JSON scene from r. Unknown fields are rejected so typos in
// hand-written scenes do not silently fall back to defaults.
func Decode(r io.Reader) (*Scene, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	// missing keys keep the defaults of New
	cfg := FileConfig{Viewport: [3]float64{0, 0, 1}}
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	s, err := cfg.Scene()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Scene converts the file form into a Scene.
func (cfg FileConfig) Scene() (*Scene, error) {
	s := &Scene{
		Camera:   vec(cfg.Camera),
		Viewport: vec(cfg.Viewport),
	}
	for _, sc := range cfg.Spheres {
		s.AddSphere(NewSphere(vec(sc.Center), sc.Radius, math3d.V4FromArray(sc.Color)))
	}
	for i, lc := range cfg.Lights {
		switch lc.Type {
		case LightAmbient:
			s.AddLight(AmbientLight{Intensity: lc.Intensity})
		case LightPoint:
			if lc.Position == nil {
				return nil, fmt.Errorf("%w: point light %d has no position", ErrInvalidScene, i)
			}
			s.AddLight(PointLight{Intensity: lc.Intensity, Position: vec(*lc.Position)})
		case LightDirectional:
			if lc.Direction == nil {
				return nil, fmt.Errorf("%w: directional light %d has no direction", ErrInvalidScene, i)
			}
			l := DirectionalLight{Intensity: lc.Intensity, Direction: vec(*lc.Direction)}
			if lc.Position != nil {
				l.Position = vec(*lc.Position)
			}
			s.AddLight(l)
		default:
			return nil, fmt.Errorf("%w: %q (light %d)", ErrUnknownLight, lc.Type, i)
		}
	}
	return s, nil
}

// Config converts a Scene into its file form. Only the built-in light types
// can be written.
func (s *Scene) Config() (FileConfig, error) {
	cfg := FileConfig{
		Camera:   arr(s.Camera),
		Viewport: arr(s.Viewport),
		Spheres:  make([]SphereCfg, 0, len(s.Objects)),
		Lights:   make([]LightCfg, 0, len(s.Lights)),
	}
	for _, sp := range s.Objects {
		cfg.Spheres = append(cfg.Spheres, SphereCfg{
			Center: arr(sp.Center),
			Radius: sp.Radius,
			Color:  sp.Color.Array(),
		})
	}
	for i, l := range s.Lights {
		switch l := l.(type) {
		case AmbientLight:
			cfg.Lights = append(cfg.Lights, LightCfg{Type: LightAmbient, Intensity: l.Intensity})
		case PointLight:
			p := arr(l.Position)
			cfg.Lights = append(cfg.Lights, LightCfg{Type: LightPoint, Intensity: l.Intensity, Position: &p})
		case DirectionalLight:
			p, d := arr(l.Position), arr(l.Direction)
			cfg.Lights = append(cfg.Lights, LightCfg{Type: LightDirectional, Intensity: l.Intensity, Position: &p, Direction: &d})
		default:
			return FileConfig{}, fmt.Errorf("%w: %T (light %d)", ErrUnknownLight, l, i)
		}
	}
	return cfg, nil
}

// Encode writes the scene as indented JSON.
func (s *Scene) Encode(w io.Writer) error {
	cfg, err := s.Config()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// Save writes the scene to path as JSON.
func (s *Scene) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene file: %w", err)
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode scene: %w", err)
	}
	return f.Close()
}

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func arr(v math3d.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
