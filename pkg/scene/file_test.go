package scene

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/raycast/pkg/math3d"
)

func TestSceneFileRoundTrip(t *testing.T) {
	s := Random(3, 12)
	s.AddLight(DirectionalLight{
		Intensity: 2,
		Direction: math3d.V3(0, -1, 0),
		Position:  math3d.V3(0, 0, 4),
	})

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Camera != s.Camera || loaded.Viewport != s.Viewport {
		t.Errorf("camera/viewport = %v/%v, want %v/%v", loaded.Camera, loaded.Viewport, s.Camera, s.Viewport)
	}
	if len(loaded.Objects) != len(s.Objects) {
		t.Fatalf("got %d spheres, want %d", len(loaded.Objects), len(s.Objects))
	}
	for i := range s.Objects {
		if loaded.Objects[i] != s.Objects[i] {
			t.Errorf("sphere %d = %v, want %v", i, loaded.Objects[i], s.Objects[i])
		}
	}
	if len(loaded.Lights) != len(s.Lights) {
		t.Fatalf("got %d lights, want %d", len(loaded.Lights), len(s.Lights))
	}
	for i := range s.Lights {
		if loaded.Lights[i] != s.Lights[i] {
			t.Errorf("light %d = %#v, want %#v", i, loaded.Lights[i], s.Lights[i])
		}
	}
}

func TestDecodeDefaultsViewport(t *testing.T) {
	s, err := Decode(strings.NewReader(`{"spheres":[{"center":[0,0,3],"radius":1,"color":[1,0,0,1]}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Viewport != math3d.V3(0, 0, 1) {
		t.Errorf("viewport = %v, want (0, 0, 1)", s.Viewport)
	}
	if s.Camera != math3d.Zero3() {
		t.Errorf("camera = %v, want origin", s.Camera)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"unknown light", `{"lights":[{"type":"spot","intensity":1}]}`, ErrUnknownLight},
		{"point without position", `{"lights":[{"type":"point","intensity":1}]}`, ErrInvalidScene},
		{"directional without direction", `{"lights":[{"type":"directional","intensity":1}]}`, ErrInvalidScene},
		{"unknown field", `{"lightz":[]}`, nil},
		{"malformed", `{"spheres":`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

type strobeLight struct{}

func (strobeLight) IntensityAt(_, _ math3d.Vec3) float64 { return 1 }

func TestEncodeRejectsCustomLights(t *testing.T) {
	s := New().AddLight(strobeLight{})
	var buf bytes.Buffer
	if err := s.Encode(&buf); !errors.Is(err, ErrUnknownLight) {
		t.Errorf("err = %v, want ErrUnknownLight", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
