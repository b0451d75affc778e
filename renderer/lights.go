package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/internal/logger"
	"deferred-engine/materials"
	"deferred-engine/scene"
)

// Array sizes declared by the lighting shader.
const (
	MaxDirectionalLights = 4
	MaxPointLights       = 32
	MaxSpotLights        = 16
)

// LightCounts reports how many lights of each kind ApplyLights uploaded.
type LightCounts struct {
	Directional int
	Point       int
	Spot        int
	Dropped     int
}

// ApplyLights uploads lights into the uniform arrays of shader:
//
//	DirectionalLights[i].{Direction,Color,Intensity}
//	PointLights[i].{Position,Color,Intensity,Constant,Linear,Quadratic}
//	SpotLights[i].{Position,Direction,Color,Intensity,CutOff,OuterCutOff,Constant,Linear,Quadratic}
//
// along with NumDirectionalLights, NumPointLights, NumSpotLights and the sum
// of all ambient lights as AmbientColor. Lights beyond an array's capacity
// are dropped with a warning.
func ApplyLights(shader *materials.Shader, lights []scene.LightData) LightCounts {
	var counts LightCounts
	ambient := mgl32.Vec3{}

	for _, l := range lights {
		color := l.Color.Vec3()
		switch l.Type {
		case scene.LightAmbient:
			ambient = ambient.Add(color.Mul(l.Intensity))

		case scene.LightDirectional:
			if counts.Directional >= MaxDirectionalLights {
				counts.Dropped++
				continue
			}
			base := fmt.Sprintf("DirectionalLights[%d]", counts.Directional)
			shader.SetVec3(base+".Direction", normalized(l.Direction))
			shader.SetVec3(base+".Color", color)
			shader.SetFloat(base+".Intensity", l.Intensity)
			counts.Directional++

		case scene.LightPoint:
			if counts.Point >= MaxPointLights {
				counts.Dropped++
				continue
			}
			base := fmt.Sprintf("PointLights[%d]", counts.Point)
			shader.SetVec3(base+".Position", l.Position)
			shader.SetVec3(base+".Color", color)
			shader.SetFloat(base+".Intensity", l.Intensity)
			setAttenuation(shader, base, l)
			counts.Point++

		case scene.LightSpot:
			if counts.Spot >= MaxSpotLights {
				counts.Dropped++
				continue
			}
			base := fmt.Sprintf("SpotLights[%d]", counts.Spot)
			shader.SetVec3(base+".Position", l.Position)
			shader.SetVec3(base+".Direction", normalized(l.Direction))
			shader.SetVec3(base+".Color", color)
			shader.SetFloat(base+".Intensity", l.Intensity)
			shader.SetFloat(base+".CutOff", float32(math.Cos(float64(l.InnerCone))))
			shader.SetFloat(base+".OuterCutOff", float32(math.Cos(float64(l.OuterCone))))
			setAttenuation(shader, base, l)
			counts.Spot++
		}
	}

	shader.SetInt("NumDirectionalLights", int32(counts.Directional))
	shader.SetInt("NumPointLights", int32(counts.Point))
	shader.SetInt("NumSpotLights", int32(counts.Spot))
	shader.SetVec3("AmbientColor", ambient)

	if counts.Dropped > 0 {
		logger.Log.Warn("Lights exceed shader capacity",
			zap.Int("dropped", counts.Dropped),
			zap.Int("lights", len(lights)))
	}
	return counts
}

func setAttenuation(shader *materials.Shader, base string, l scene.LightData) {
	c := l.Constant
	if c == 0 && l.Linear == 0 && l.Quadratic == 0 {
		c = scene.DefaultConstant
	}
	shader.SetFloat(base+".Constant", c)
	shader.SetFloat(base+".Linear", l.Linear)
	shader.SetFloat(base+".Quadratic", l.Quadratic)
}

func normalized(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return v.Normalize()
}
