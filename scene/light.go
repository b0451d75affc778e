package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

type LightType int

const (
	LightAmbient LightType = iota
	LightDirectional
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	}
	return "unknown"
}

// LightData is one light extracted from a model file or set up by hand.
// Fields that do not apply to Type are ignored.
type LightData struct {
	Name      string
	Type      LightType
	Position  mgl32.Vec3 // point, spot
	Direction mgl32.Vec3 // directional, spot
	Color     core.Color
	Intensity float32

	// Point and spot attenuation: 1 / (Constant + Linear*d + Quadratic*d*d).
	Constant  float32
	Linear    float32
	Quadratic float32

	// Spot cone half-angles in radians.
	InnerCone float32
	OuterCone float32
}

// Default attenuation for lights whose source gave none (about 50 units).
const (
	DefaultConstant  = 1.0
	DefaultLinear    = 0.09
	DefaultQuadratic = 0.032
)

func NewAmbientLight(color core.Color, intensity float32) LightData {
	return LightData{Type: LightAmbient, Color: color, Intensity: intensity}
}

func NewDirectionalLight(direction mgl32.Vec3, color core.Color, intensity float32) LightData {
	return LightData{
		Type:      LightDirectional,
		Direction: direction.Normalize(),
		Color:     color,
		Intensity: intensity,
	}
}

func NewPointLight(position mgl32.Vec3, color core.Color, intensity float32) LightData {
	return LightData{
		Type:      LightPoint,
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Constant:  DefaultConstant,
		Linear:    DefaultLinear,
		Quadratic: DefaultQuadratic,
	}
}

func NewSpotLight(position, direction mgl32.Vec3, color core.Color, intensity, inner, outer float32) LightData {
	l := NewPointLight(position, color, intensity)
	l.Type = LightSpot
	l.Direction = direction.Normalize()
	l.InnerCone, l.OuterCone = inner, outer
	return l
}
