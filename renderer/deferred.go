package renderer

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/assets"
	"deferred-engine/core"
	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/materials"
	"deferred-engine/scene"
	"deferred-engine/sprites"
)

// gBufferSamplers names the lighting-pass sampler for each G-buffer slot.
var gBufferSamplers = []string{
	GBufferAlbedo:    "GAlbedo",
	GBufferNormal:    "GNormal",
	GBufferPosition:  "GPosition",
	GBufferMetallic:  "GMetallic",
	GBufferRoughness: "GRoughness",
	GBufferEmission:  "GEmission",
}

// Deferred runs the two-pass frame: geometry into a G-buffer, then one
// full-screen lighting sprite whose material borrows the G-buffer textures.
type Deferred struct {
	Target   *RenderTarget
	Lighting *materials.Material
	Exposure float32

	gl       gpu.GL
	viewport *core.Viewport
	quad     *sprites.Sprite
}

// NewDeferred builds the G-buffer at the viewport size and the lighting
// material from shaderFS (the embedded assets when nil).
func NewDeferred(g gpu.GL, vp *core.Viewport, shaderFS fs.FS) (*Deferred, error) {
	if vp == nil {
		return nil, errors.New("deferred: no viewport")
	}
	if shaderFS == nil {
		shaderFS = assets.Shaders
	}
	width, height := max(vp.Width, 1), max(vp.Height, 1)
	target, err := NewRenderTarget(g, width, height, GBufferAttachments)
	if err != nil {
		if target != nil {
			target.Destroy()
		}
		return nil, fmt.Errorf("g-buffer: %w", err)
	}

	lighting, err := materials.New(g, shaderFS, assets.SpriteVert, assets.LightingFrag)
	if err != nil {
		target.Destroy()
		lighting.Destroy()
		return nil, fmt.Errorf("lighting material: %w", err)
	}
	lighting.Name = "deferred-lighting"
	lighting.SetDepthSortingMode(materials.DepthNone)
	lighting.SetBlendingMode(materials.BlendNone)
	lighting.SetCullingMode(materials.CullNone)
	for i, name := range gBufferSamplers {
		lighting.SetTexture(i, target.Texture(i))
		lighting.Shader().SetInt(name, int32(i))
	}

	d := &Deferred{
		Target:   target,
		Lighting: lighting,
		Exposure: 1,
		gl:       g,
		viewport: vp,
	}
	d.quad = sprites.New(g, lighting, vp, mgl32.Vec2{}, mgl32.Vec2{float32(vp.Width), float32(vp.Height)})
	return d, nil
}

// Geometry clears the G-buffer and runs draw with it bound.
func (d *Deferred) Geometry(draw func()) {
	d.Target.Bind()
	// A DepthRead material from the previous frame may have left writes off,
	// and glClear honours the mask.
	d.gl.DepthMask(true)
	d.gl.ClearColor(0, 0, 0, 0)
	d.gl.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit | gpu.StencilBufferBit)
	draw()
	d.Target.Unbind()
}

// Compose restores the default framebuffer viewport and shades every
// G-buffer texel with lights as seen from camera.
func (d *Deferred) Compose(camera *scene.Camera, lights []scene.LightData) LightCounts {
	d.viewport.Apply(d.gl)
	shader := d.Lighting.Shader()
	counts := ApplyLights(shader, lights)
	if camera != nil {
		shader.SetVec3("ViewPosition", camera.Eye())
	}
	shader.SetFloat("Exposure", d.Exposure)

	d.quad.Position = mgl32.Vec2{}
	d.quad.Size = mgl32.Vec2{float32(d.viewport.Width), float32(d.viewport.Height)}
	d.quad.Render()
	return counts
}

// Resize follows the viewport. The G-buffer keeps its texture handles, so
// the lighting material's borrowed slots stay valid.
func (d *Deferred) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := d.Target.Resize(width, height); err != nil {
		logger.Log.Error("G-buffer resize failed",
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Error(err))
	}
}

// Destroy releases the G-buffer, the quad and the lighting material.
func (d *Deferred) Destroy() {
	d.quad.Destroy()
	d.Lighting.Destroy()
	d.Target.Destroy()
}
