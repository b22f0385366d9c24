package models

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/scene"
)

// documentLights returns the KHR_lights_punctual light list, if any.
func documentLights(doc *gltf.Document) lightspunctual.Lights {
	if doc.Extensions == nil {
		return nil
	}
	switch v := doc.Extensions[lightspunctual.ExtensionName].(type) {
	case lightspunctual.Lights:
		return v
	case *lightspunctual.Lights:
		if v != nil {
			return *v
		}
	}
	return nil
}

// nodeLight returns the light index a node instantiates.
func nodeLight(n *gltf.Node) (int, bool) {
	if n.Extensions == nil {
		return 0, false
	}
	switch v := n.Extensions[lightspunctual.ExtensionName].(type) {
	case lightspunctual.LightIndex:
		return int(v), true
	case *lightspunctual.LightIndex:
		if v != nil {
			return int(*v), true
		}
	}
	return 0, false
}

// convertLight places a punctual light in world space. glTF lights shine
// down their node's -Z axis. Spot lights have no cone here and act as point
// lights.
func convertLight(l *lightspunctual.Light, world math3d.Mat4) (scene.Light, bool) {
	if l == nil {
		return nil, false
	}
	intensity := l.IntensityOrDefault()
	pos := world.Translation()

	switch l.Type {
	case lightspunctual.TypePoint, lightspunctual.TypeSpot:
		return scene.PointLight{Intensity: intensity, Position: pos}, true
	case lightspunctual.TypeDirectional:
		dir := world.MulVec3Dir(math3d.V3(0, 0, -1))
		return scene.DirectionalLight{Intensity: intensity, Direction: dir, Position: pos}, true
	}
	return nil, false
}
