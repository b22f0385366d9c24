// Package models builds ray caster scenes from glTF documents.
package models

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/scene"
)

// AmbientExtra is the scene extras key read as the ambient intensity.
const AmbientExtra = "ambient"

// GLTFLoader turns glTF nodes into spheres and KHR_lights_punctual lights
// into scene lights. Each mesh node becomes one sphere enclosing the mesh
// bounds; the first primitive's base color becomes the sphere color.
type GLTFLoader struct {
	// Ambient is added as an AmbientLight when the document does not set
	// its own through scene extras. Zero adds nothing.
	Ambient float64

	// DefaultColor is used for primitives without a material.
	DefaultColor math3d.Vec4
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		Ambient:      0.2,
		DefaultColor: math3d.RGBA(1, 1, 1, 1),
	}
}

// LoadScene loads a .gltf or .glb file with the default loader.
func LoadScene(path string) (*scene.Scene, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens a GLTF or GLB file and builds a scene from it.
func (l *GLTFLoader) Load(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	s, err := l.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Build converts an already decoded document.
func (l *GLTFLoader) Build(doc *gltf.Document) (*scene.Scene, error) {
	s := scene.New()
	lights := documentLights(doc)

	roots := rootNodes(doc)
	ambient := l.Ambient
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		if a, ok := ambientExtra(doc.Scenes[*doc.Scene].Extras); ok {
			ambient = a
		}
	}
	if ambient != 0 {
		s.AddLight(scene.AmbientLight{Intensity: ambient})
	}

	var walk func(idx int, parent math3d.Mat4, depth int) error
	walk = func(idx int, parent math3d.Mat4, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node %d: cycle in node hierarchy", idx)
		}
		n := doc.Nodes[idx]
		world := parent.Mul(localMatrix(n))

		if n.Mesh != nil {
			sp, err := l.sphereFor(doc, *n.Mesh, world)
			if err != nil {
				return fmt.Errorf("node %d: %w", idx, err)
			}
			s.AddSphere(sp)
		}
		if n.Camera != nil {
			s.Camera = world.Translation()
			s.Viewport = s.Camera.Add(math3d.V3(0, 0, 1))
		}
		if li, ok := nodeLight(n); ok {
			if li >= len(lights) {
				return fmt.Errorf("node %d: light index %d out of range", idx, li)
			}
			if light, ok := convertLight(lights[li], world); ok {
				s.AddLight(light)
			}
		}

		for _, child := range n.Children {
			if err := walk(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, idx := range roots {
		if err := walk(idx, math3d.Identity(), 0); err != nil {
			return nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// rootNodes returns the nodes of the default scene, or every node that is
// nobody's child when the document names no scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// localMatrix returns the node's transform relative to its parent.
func localMatrix(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != [16]float64{} && math3d.Mat4(n.Matrix) != math3d.Identity() {
		return math3d.Mat4(n.Matrix)
	}

	t := math3d.Translate(math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2]))

	r := math3d.Identity()
	if n.Rotation != [4]float64{} {
		q := mgl64.Quat{W: n.Rotation[3], V: mgl64.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]}}
		r = math3d.Mat4(q.Normalize().Mat4())
	}

	scale := n.Scale
	if scale == [3]float64{} {
		scale = [3]float64{1, 1, 1}
	}
	sm := math3d.Scale(math3d.V3(scale[0], scale[1], scale[2]))

	return t.Mul(r).Mul(sm)
}

// sphereFor encloses the mesh's POSITION bounds in a sphere placed in
// world space.
func (l *GLTFLoader) sphereFor(doc *gltf.Document, meshIdx int, world math3d.Mat4) (scene.Sphere, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return scene.Sphere{}, fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	m := doc.Meshes[meshIdx]

	color := l.DefaultColor
	lo := math3d.V3(math.Inf(1), math.Inf(1), math.Inf(1))
	hi := math3d.V3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	haveBounds := false

	for i, prim := range m.Primitives {
		if i == 0 && prim.Material != nil {
			color = materialColor(doc, *prim.Material, color)
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		pmin, pmax, err := positionBounds(doc, posIdx)
		if err != nil {
			return scene.Sphere{}, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		lo = lo.Min(pmin)
		hi = hi.Max(pmax)
		haveBounds = true
	}

	// a mesh without positions stands for a unit sphere
	center := math3d.Zero3()
	radius := 1.0
	if haveBounds {
		center = lo.Add(hi).Scale(0.5)
		half := hi.Sub(lo).Scale(0.5)
		radius = math.Max(half.X, math.Max(half.Y, half.Z))
	}

	return scene.NewSphere(world.MulVec3(center), radius*world.MaxScale(), color), nil
}

// materialColor returns the base color factor of a material.
func materialColor(doc *gltf.Document, idx int, fallback math3d.Vec4) math3d.Vec4 {
	if idx < 0 || idx >= len(doc.Materials) {
		return fallback
	}
	pbr := doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return fallback
	}
	return math3d.V4FromArray(*pbr.BaseColorFactor)
}

// positionBounds prefers the accessor's declared min/max and falls back to
// scanning the vertex data.
func positionBounds(doc *gltf.Document, accessorIdx int) (math3d.Vec3, math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return math3d.Vec3{}, math3d.Vec3{}, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	acc := doc.Accessors[accessorIdx]
	if len(acc.Min) == 3 && len(acc.Max) == 3 {
		return math3d.V3(acc.Min[0], acc.Min[1], acc.Min[2]),
			math3d.V3(acc.Max[0], acc.Max[1], acc.Max[2]), nil
	}

	positions, err := readVec3Accessor(doc, accessorIdx)
	if err != nil {
		return math3d.Vec3{}, math3d.Vec3{}, fmt.Errorf("read positions: %w", err)
	}
	if len(positions) == 0 {
		return math3d.Vec3{}, math3d.Vec3{}, fmt.Errorf("accessor %d has no positions", accessorIdx)
	}
	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, nil
}

func ambientExtra(extras any) (float64, bool) {
	m, ok := extras.(map[string]any)
	if !ok {
		return 0, false
	}
	a, ok := m[AmbientExtra].(float64)
	return a, ok
}
