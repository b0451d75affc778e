package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/assets"
	"deferred-engine/core"
	"deferred-engine/gpu/gputest"
	"deferred-engine/materials"
	"deferred-engine/scene"
)

func lightingShader(t *testing.T, g *gputest.GL) *materials.Shader {
	t.Helper()
	s, err := materials.NewShader(g, assets.Shaders, assets.SpriteVert, assets.LightingFrag)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	return s
}

func TestApplyLightsUploadsArrays(t *testing.T) {
	g := gputest.New()
	s := lightingShader(t, g)
	red := core.Color{R: 1, A: 1}
	blue := core.Color{B: 1, A: 1}

	lights := []scene.LightData{
		scene.NewAmbientLight(core.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}, 1),
		scene.NewPointLight(mgl32.Vec3{1, 2, 3}, red, 2),
		scene.NewDirectionalLight(mgl32.Vec3{0, -2, 0}, blue, 0.5),
		scene.NewPointLight(mgl32.Vec3{4, 5, 6}, blue, 3),
		scene.NewSpotLight(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0}, red, 4, 0.2, 0.4),
		scene.NewAmbientLight(core.Color{R: 0.2, G: 0.3, B: 0.4, A: 1}, 0.5),
	}
	counts := ApplyLights(s, lights)

	if counts != (LightCounts{Directional: 1, Point: 2, Spot: 1}) {
		t.Errorf("ApplyLights: unexpected counts %+v", counts)
	}

	checks := map[string]any{
		"NumDirectionalLights":           int32(1),
		"NumPointLights":                 int32(2),
		"NumSpotLights":                  int32(1),
		"PointLights[0].Position":        mgl32.Vec3{1, 2, 3},
		"PointLights[1].Position":        mgl32.Vec3{4, 5, 6},
		"PointLights[1].Intensity":       float32(3),
		"PointLights[0].Linear":          float32(scene.DefaultLinear),
		"DirectionalLights[0].Direction": mgl32.Vec3{0, -1, 0},
		"DirectionalLights[0].Color":     mgl32.Vec3{0, 0, 1},
		"SpotLights[0].CutOff":           float32(math.Cos(float64(float32(0.2)))),
		"SpotLights[0].OuterCutOff":      float32(math.Cos(float64(float32(0.4)))),
	}
	for name, want := range checks {
		got, ok := g.Uniform(s.ID(), name)
		if !ok || got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}

	ambient, _ := g.Uniform(s.ID(), "AmbientColor")
	if a, ok := ambient.(mgl32.Vec3); !ok || !a.ApproxEqual(mgl32.Vec3{0.2, 0.25, 0.3}) {
		t.Errorf("AmbientColor: expected (0.2, 0.25, 0.3), got %v", ambient)
	}
}

func TestApplyLightsDropsOverflow(t *testing.T) {
	observeLogs(t)
	g := gputest.New()
	s := lightingShader(t, g)

	var lights []scene.LightData
	for i := 0; i < MaxDirectionalLights+3; i++ {
		lights = append(lights, scene.NewDirectionalLight(mgl32.Vec3{0, -1, 0}, core.ColorWhite, 1))
	}
	counts := ApplyLights(s, lights)
	if counts.Directional != MaxDirectionalLights || counts.Dropped != 3 {
		t.Errorf("ApplyLights: expected %d kept and 3 dropped, got %+v", MaxDirectionalLights, counts)
	}
	if v, _ := g.Uniform(s.ID(), "NumDirectionalLights"); v != int32(MaxDirectionalLights) {
		t.Errorf("NumDirectionalLights: expected %d, got %v", MaxDirectionalLights, v)
	}

	// A later frame with fewer lights lowers the counts.
	ApplyLights(s, nil)
	if v, _ := g.Uniform(s.ID(), "NumDirectionalLights"); v != int32(0) {
		t.Errorf("NumDirectionalLights: expected 0, got %v", v)
	}
}
