// Package sprites draws screen-space quads and fixed-grid bitmap text on top
// of a Material.
//
// Coordinates are pixels in the current Viewport with the origin at the
// top-left corner and y growing downwards. Depth, blend and cull state come
// from the sprite's Material; Render never saves or restores GL state.
package sprites

import (
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/materials"
)

// FullUV covers the whole texture: (left, top, right, bottom) in texture
// space, where top is v=1 because textures are stored bottom-up.
var FullUV = mgl32.Vec4{0, 1, 1, 0}

var quadIndices = []uint32{0, 1, 3, 1, 2, 3}

// Sprite is one textured quad. It owns its buffers and borrows its Material
// and Viewport.
type Sprite struct {
	Position mgl32.Vec2
	Size     mgl32.Vec2
	Material *materials.Material
	Viewport *core.Viewport

	gl  gpu.GL
	uv  mgl32.Vec4
	vao uint32
	vbo uint32
	ebo uint32
}

// New creates a sprite covering the full texture and turns on the
// material's UseTexture flag when its shader has one.
func New(g gpu.GL, material *materials.Material, vp *core.Viewport, position, size mgl32.Vec2) *Sprite {
	s := &Sprite{
		Position: position,
		Size:     size,
		Viewport: vp,
		gl:       g,
		uv:       FullUV,
	}
	s.SetMaterial(material)
	s.createBuffers()
	return s
}

// NewMaterial builds a material suited to overlay sprites: no depth test,
// alpha blending and no face culling (the y-down projection flips winding).
func NewMaterial(g gpu.GL, fsys fs.FS, vertPath, fragPath string, texturePaths ...string) (*materials.Material, error) {
	m, err := materials.New(g, fsys, vertPath, fragPath, texturePaths...)
	m.SetDepthSortingMode(materials.DepthNone)
	m.SetBlendingMode(materials.BlendAlpha)
	m.SetCullingMode(materials.CullNone)
	return m, err
}

// quadVertices lays out a unit quad with the UV rectangle mapped onto it.
func quadVertices(uv mgl32.Vec4) []float32 {
	n := mgl32.Vec3{0, 0, 1}
	return core.Interleave([]core.Vertex{
		{Position: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{uv[2], uv[1]}, Normal: n, Color: core.White}, // top right
		{Position: mgl32.Vec3{1, 1, 0}, UV: mgl32.Vec2{uv[2], uv[3]}, Normal: n, Color: core.White}, // bottom right
		{Position: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{uv[0], uv[3]}, Normal: n, Color: core.White}, // bottom left
		{Position: mgl32.Vec3{0, 0, 0}, UV: mgl32.Vec2{uv[0], uv[1]}, Normal: n, Color: core.White}, // top left
	})
}

func (s *Sprite) createBuffers() {
	g := s.gl
	s.vao = g.GenVertexArray()
	g.BindVertexArray(s.vao)

	s.vbo = g.GenBuffer()
	g.BindBuffer(gpu.ArrayBuffer, s.vbo)
	g.BufferFloats(gpu.ArrayBuffer, quadVertices(s.uv), gpu.DynamicDraw)

	s.ebo = g.GenBuffer()
	g.BindBuffer(gpu.ElementArrayBuffer, s.ebo)
	g.BufferIndices(gpu.ElementArrayBuffer, quadIndices, gpu.StaticDraw)

	g.EnableVertexAttribArray(core.AttribPosition)
	g.VertexAttribPointer(core.AttribPosition, 3, core.VertexStride, core.OffsetPosition*4)
	g.EnableVertexAttribArray(core.AttribUV)
	g.VertexAttribPointer(core.AttribUV, 2, core.VertexStride, core.OffsetUV*4)
	g.EnableVertexAttribArray(core.AttribNormal)
	g.VertexAttribPointer(core.AttribNormal, 3, core.VertexStride, core.OffsetNormal*4)
	g.EnableVertexAttribArray(core.AttribColor)
	g.VertexAttribPointer(core.AttribColor, 3, core.VertexStride, core.OffsetColor*4)

	g.BindVertexArray(0)
}

// SetMaterial swaps the borrowed material and enables its texture sampling.
func (s *Sprite) SetMaterial(material *materials.Material) {
	s.Material = material
	if material != nil && material.Shader().HasUniform("UseTexture") {
		material.Shader().SetBool("UseTexture", true)
	}
}

func (s *Sprite) UV() mgl32.Vec4 { return s.uv }

// SetUV selects the texture rectangle (left, top, right, bottom). The vertex
// buffer is only rewritten when the rectangle changes.
func (s *Sprite) SetUV(uv mgl32.Vec4) {
	if uv == s.uv {
		return
	}
	s.uv = uv
	s.gl.BindBuffer(gpu.ArrayBuffer, s.vbo)
	s.gl.BufferSubFloats(gpu.ArrayBuffer, 0, quadVertices(uv))
	s.gl.BindBuffer(gpu.ArrayBuffer, 0)
}

// Projection is the pixel-space orthographic projection for vp, or false
// when vp has no height.
func Projection(vp *core.Viewport) (mgl32.Mat4, bool) {
	if _, ok := vp.Aspect(); !ok {
		return mgl32.Ident4(), false
	}
	return mgl32.Ortho(0, float32(vp.Width), float32(vp.Height), 0, -1, 1), true
}

// Render draws the quad at Position scaled to Size. Nothing is drawn while
// the viewport has no height.
func (s *Sprite) Render() {
	projection, ok := Projection(s.Viewport)
	if !ok {
		return
	}
	if s.Material == nil {
		logger.Log.Warn("Sprite render without material")
		return
	}

	model := mgl32.Translate3D(s.Position.X(), s.Position.Y(), 0).
		Mul4(mgl32.Scale3D(s.Size.X(), s.Size.Y(), 1))

	s.Material.Bind()
	shader := s.Material.Shader()
	shader.SetMat4("Model", model)
	shader.SetMat4("View", mgl32.Ident4())
	shader.SetMat4("Projection", projection)

	s.gl.BindVertexArray(s.vao)
	s.gl.DrawElements(gpu.Triangles, int32(len(quadIndices)))
	s.gl.BindVertexArray(0)
}

// Destroy releases the quad's buffers. The material is not touched.
func (s *Sprite) Destroy() {
	if s.vao == 0 {
		return
	}
	s.gl.DeleteVertexArray(s.vao)
	s.gl.DeleteBuffer(s.vbo)
	s.gl.DeleteBuffer(s.ebo)
	s.vao, s.vbo, s.ebo = 0, 0, 0
}
