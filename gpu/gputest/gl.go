// Package gputest provides an in-memory gpu.GL that records what the engine
// asks of the graphics context, so components can be tested without a GPU.
package gputest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/gpu"
)

// Texture is the recorded state of one texture object.
type Texture struct {
	Width, Height  int32
	InternalFormat int32
	Format, Type   uint32
	Params         map[uint32]int32
	Mipmapped      bool
	Uploads        int
}

// Framebuffer is the recorded state of one framebuffer object.
type Framebuffer struct {
	Attachments map[uint32]uint32 // attachment point -> texture or renderbuffer
	DrawBuffers []uint32
}

// Renderbuffer is the recorded storage of one renderbuffer object.
type Renderbuffer struct {
	Width, Height  int32
	InternalFormat uint32
}

// Program is a linked program and the uniform values set on it.
type Program struct {
	Source    string
	Uniforms  map[string]any
	locations map[string]int32
	names     map[int32]string
}

// Buffer is the recorded contents of one buffer object.
type Buffer struct {
	Floats  []float32
	Indices []uint32
	Usage   uint32
	Uploads int
}

// Attrib is one declared vertex attribute.
type Attrib struct {
	Size   int32
	Stride int32
	Offset int
}

// VertexArray records the buffers and attributes captured by a vertex array.
type VertexArray struct {
	ArrayBuffer   uint32
	ElementBuffer uint32
	Attribs       map[uint32]Attrib
}

// Draw is one recorded DrawElements call.
type Draw struct {
	Program     uint32
	VertexArray uint32
	Count       int32
	Model       mgl32.Mat4
	Textures    map[uint32]uint32 // unit index -> texture
	Framebuffer uint32
}

// Clear is one recorded Clear call. DepthWrite is the depth mask at the time
// of the call; a real context skips the depth bit while it is false.
type Clear struct {
	Mask        uint32
	Framebuffer uint32
	DepthWrite  bool
}

// GL is a recording implementation of gpu.GL. The zero value is not usable;
// call New.
type GL struct {
	// FailFramebuffers makes CheckFramebufferStatus report an incomplete framebuffer.
	FailFramebuffers bool

	Textures      map[uint32]*Texture
	Framebuffers  map[uint32]*Framebuffer
	Renderbuffers map[uint32]*Renderbuffer
	Programs      map[uint32]*Program
	Buffers       map[uint32]*Buffer
	VertexArrays  map[uint32]*VertexArray
	Draws         []Draw

	Enabled     map[uint32]bool
	DepthWrite  bool
	DepthFn     uint32
	CullMode    uint32
	BlendSrc    uint32
	BlendDst    uint32
	ViewportBox [4]int32
	ClearColors [4]float32
	Clears      []Clear

	ActiveUnit          uint32 // index, not GL_TEXTURE0+i
	BoundTextures       map[uint32]uint32
	BoundProgram        uint32
	BoundFramebuffer    uint32
	BoundRenderbuffer   uint32
	BoundVertexArray    uint32
	BoundArrayBuffer    uint32
	UniformLookups      int
	TextureBindCalls    int
	DeletedTextures     []uint32
	DeletedPrograms     []uint32
	DeletedBuffers      []uint32
	DeletedVertexArrays []uint32

	shaders map[uint32]string
	next    uint32
}

var _ gpu.GL = (*GL)(nil)

// New returns an empty recording context with GL default state.
func New() *GL {
	return &GL{
		Textures:      map[uint32]*Texture{},
		Framebuffers:  map[uint32]*Framebuffer{},
		Renderbuffers: map[uint32]*Renderbuffer{},
		Programs:      map[uint32]*Program{},
		Buffers:       map[uint32]*Buffer{},
		VertexArrays:  map[uint32]*VertexArray{},
		Enabled:       map[uint32]bool{},
		BoundTextures: map[uint32]uint32{},
		DepthWrite:    true,
		DepthFn:       gpu.Less,
		CullMode:      gpu.Back,
		BlendSrc:      gpu.One,
		BlendDst:      gpu.Zero,
		shaders:       map[uint32]string{},
	}
}

func (g *GL) handle() uint32 {
	g.next++
	return g.next
}

// Uniform returns the last value set for name on program.
func (g *GL) Uniform(program uint32, name string) (any, bool) {
	p, ok := g.Programs[program]
	if !ok {
		return nil, false
	}
	v, ok := p.Uniforms[name]
	return v, ok
}

// TextureAlive reports whether texture has been created and not deleted.
func (g *GL) TextureAlive(texture uint32) bool {
	_, ok := g.Textures[texture]
	return ok
}

// ErrCompile is returned for sources that are empty or contain "#error".
var ErrCompile = errors.New("gputest: compile failed")

func (g *GL) CompileShader(stage uint32, source string) (uint32, error) {
	if strings.TrimSpace(source) == "" || strings.Contains(source, "#error") {
		return 0, fmt.Errorf("%w: stage 0x%X", ErrCompile, stage)
	}
	id := g.handle()
	g.shaders[id] = source
	return id, nil
}

func (g *GL) LinkProgram(shaders ...uint32) (uint32, error) {
	var src strings.Builder
	for _, s := range shaders {
		body, ok := g.shaders[s]
		if !ok {
			return 0, fmt.Errorf("gputest: link failed: unknown shader %d", s)
		}
		src.WriteString(body)
		src.WriteByte('\n')
	}
	id := g.handle()
	g.Programs[id] = &Program{
		Source:    src.String(),
		Uniforms:  map[string]any{},
		locations: map[string]int32{},
		names:     map[int32]string{},
	}
	return id, nil
}

func (g *GL) DeleteShader(shader uint32) { delete(g.shaders, shader) }

func (g *GL) DeleteProgram(program uint32) {
	delete(g.Programs, program)
	g.DeletedPrograms = append(g.DeletedPrograms, program)
	if g.BoundProgram == program {
		g.BoundProgram = 0
	}
}

func (g *GL) UseProgram(program uint32) { g.BoundProgram = program }

var uniformBase = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

// GetUniformLocation resolves a uniform whose base identifier is declared
// with a uniform statement in the program source. Unknown names yield -1, as
// in OpenGL.
func (g *GL) GetUniformLocation(program uint32, name string) int32 {
	g.UniformLookups++
	p, ok := g.Programs[program]
	if !ok {
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	base := uniformBase.FindString(name)
	if base == "" || !declaresUniform(p.Source, base) {
		return -1
	}
	loc := int32(len(p.locations))
	p.locations[name] = loc
	p.names[loc] = name
	return loc
}

func declaresUniform(src, base string) bool {
	decl := regexp.MustCompile(`\buniform\s+\w+\s+` + regexp.QuoteMeta(base) + `\b`)
	return decl.MatchString(src)
}

func (g *GL) setUniform(location int32, v any) {
	if location < 0 {
		return
	}
	p, ok := g.Programs[g.BoundProgram]
	if !ok {
		return
	}
	if name, ok := p.names[location]; ok {
		p.Uniforms[name] = v
	}
}

func (g *GL) Uniform1i(location int32, v int32)   { g.setUniform(location, v) }
func (g *GL) Uniform1f(location int32, v float32) { g.setUniform(location, v) }
func (g *GL) Uniform2f(location int32, x, y float32) {
	g.setUniform(location, mgl32.Vec2{x, y})
}
func (g *GL) Uniform3f(location int32, x, y, z float32) {
	g.setUniform(location, mgl32.Vec3{x, y, z})
}
func (g *GL) Uniform4f(location int32, x, y, z, w float32) {
	g.setUniform(location, mgl32.Vec4{x, y, z, w})
}
func (g *GL) UniformMatrix4fv(location int32, m mgl32.Mat4) { g.setUniform(location, m) }

func (g *GL) Enable(capability uint32)  { g.Enabled[capability] = true }
func (g *GL) Disable(capability uint32) { g.Enabled[capability] = false }
func (g *GL) DepthMask(write bool)      { g.DepthWrite = write }
func (g *GL) DepthFunc(fn uint32)       { g.DepthFn = fn }
func (g *GL) CullFace(mode uint32)      { g.CullMode = mode }
func (g *GL) BlendFunc(src, dst uint32) { g.BlendSrc, g.BlendDst = src, dst }

func (g *GL) Viewport(x, y, width, height int32) {
	g.ViewportBox = [4]int32{x, y, width, height}
}

func (g *GL) ClearColor(r, gr, b, a float32) { g.ClearColors = [4]float32{r, gr, b, a} }
func (g *GL) Clear(mask uint32) {
	g.Clears = append(g.Clears, Clear{Mask: mask, Framebuffer: g.BoundFramebuffer, DepthWrite: g.DepthWrite})
}

func (g *GL) GenTexture() uint32 {
	id := g.handle()
	g.Textures[id] = &Texture{Params: map[uint32]int32{}}
	return id
}

func (g *GL) DeleteTexture(texture uint32) {
	if texture == 0 {
		return
	}
	delete(g.Textures, texture)
	g.DeletedTextures = append(g.DeletedTextures, texture)
	for unit, bound := range g.BoundTextures {
		if bound == texture {
			g.BoundTextures[unit] = 0
		}
	}
}

func (g *GL) ActiveTexture(unit uint32) { g.ActiveUnit = unit - gpu.Texture0 }

func (g *GL) BindTexture(target, texture uint32) {
	g.TextureBindCalls++
	g.BoundTextures[g.ActiveUnit] = texture
}

func (g *GL) boundTexture() *Texture {
	return g.Textures[g.BoundTextures[g.ActiveUnit]]
}

func (g *GL) TexImage2D(target uint32, internalFormat int32, width, height int32, format, xtype uint32, pixels []byte) {
	tex := g.boundTexture()
	if tex == nil {
		return
	}
	tex.Width, tex.Height = width, height
	tex.InternalFormat = internalFormat
	tex.Format, tex.Type = format, xtype
	tex.Uploads++
}

func (g *GL) TexParameteri(target, pname uint32, param int32) {
	if tex := g.boundTexture(); tex != nil {
		tex.Params[pname] = param
	}
}

func (g *GL) GenerateMipmap(target uint32) {
	if tex := g.boundTexture(); tex != nil {
		tex.Mipmapped = true
	}
}

func (g *GL) GetTexLevelParameteri(target uint32, level int32, pname uint32) int32 {
	tex := g.boundTexture()
	if tex == nil {
		return 0
	}
	switch pname {
	case gpu.TextureWidth:
		return tex.Width
	case gpu.TextureHeight:
		return tex.Height
	}
	return 0
}

func (g *GL) GenFramebuffer() uint32 {
	id := g.handle()
	g.Framebuffers[id] = &Framebuffer{Attachments: map[uint32]uint32{}}
	return id
}

func (g *GL) DeleteFramebuffer(framebuffer uint32) {
	delete(g.Framebuffers, framebuffer)
	if g.BoundFramebuffer == framebuffer {
		g.BoundFramebuffer = 0
	}
}

func (g *GL) BindFramebuffer(target, framebuffer uint32) { g.BoundFramebuffer = framebuffer }

func (g *GL) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32) {
	if fb, ok := g.Framebuffers[g.BoundFramebuffer]; ok {
		fb.Attachments[attachment] = texture
	}
}

func (g *GL) FramebufferRenderbuffer(target, attachment, rbTarget, renderbuffer uint32) {
	if fb, ok := g.Framebuffers[g.BoundFramebuffer]; ok {
		fb.Attachments[attachment] = renderbuffer
	}
}

func (g *GL) CheckFramebufferStatus(target uint32) uint32 {
	fb, ok := g.Framebuffers[g.BoundFramebuffer]
	if g.FailFramebuffers || !ok || len(fb.Attachments) == 0 {
		return 0x8CD6 // FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	return gpu.FramebufferComplete
}

func (g *GL) DrawBuffers(attachments []uint32) {
	if fb, ok := g.Framebuffers[g.BoundFramebuffer]; ok {
		fb.DrawBuffers = append([]uint32(nil), attachments...)
	}
}

func (g *GL) GenRenderbuffer() uint32 {
	id := g.handle()
	g.Renderbuffers[id] = &Renderbuffer{}
	return id
}

func (g *GL) DeleteRenderbuffer(renderbuffer uint32) { delete(g.Renderbuffers, renderbuffer) }

func (g *GL) BindRenderbuffer(target, renderbuffer uint32) { g.BoundRenderbuffer = renderbuffer }

func (g *GL) RenderbufferStorage(target, internalFormat uint32, width, height int32) {
	if rb, ok := g.Renderbuffers[g.BoundRenderbuffer]; ok {
		rb.Width, rb.Height, rb.InternalFormat = width, height, internalFormat
	}
}

func (g *GL) GetRenderbufferParameteri(target, pname uint32) int32 {
	rb, ok := g.Renderbuffers[g.BoundRenderbuffer]
	if !ok {
		return 0
	}
	switch pname {
	case gpu.RenderbufferWidth:
		return rb.Width
	case gpu.RenderbufferHeight:
		return rb.Height
	}
	return 0
}

func (g *GL) GenVertexArray() uint32 {
	id := g.handle()
	g.VertexArrays[id] = &VertexArray{Attribs: map[uint32]Attrib{}}
	return id
}

func (g *GL) DeleteVertexArray(vao uint32) {
	delete(g.VertexArrays, vao)
	g.DeletedVertexArrays = append(g.DeletedVertexArrays, vao)
}

func (g *GL) BindVertexArray(vao uint32) { g.BoundVertexArray = vao }

func (g *GL) GenBuffer() uint32 {
	id := g.handle()
	g.Buffers[id] = &Buffer{}
	return id
}

func (g *GL) DeleteBuffer(buffer uint32) {
	delete(g.Buffers, buffer)
	g.DeletedBuffers = append(g.DeletedBuffers, buffer)
}

func (g *GL) BindBuffer(target, buffer uint32) {
	switch target {
	case gpu.ArrayBuffer:
		g.BoundArrayBuffer = buffer
	case gpu.ElementArrayBuffer:
		if va, ok := g.VertexArrays[g.BoundVertexArray]; ok {
			va.ElementBuffer = buffer
		}
	}
}

func (g *GL) targetBuffer(target uint32) *Buffer {
	if target == gpu.ElementArrayBuffer {
		if va, ok := g.VertexArrays[g.BoundVertexArray]; ok {
			return g.Buffers[va.ElementBuffer]
		}
		return nil
	}
	return g.Buffers[g.BoundArrayBuffer]
}

func (g *GL) BufferFloats(target uint32, data []float32, usage uint32) {
	if b := g.targetBuffer(target); b != nil {
		b.Floats = append([]float32(nil), data...)
		b.Usage = usage
		b.Uploads++
	}
}

func (g *GL) BufferSubFloats(target uint32, offset int, data []float32) {
	b := g.targetBuffer(target)
	if b == nil {
		return
	}
	start := offset / 4
	if start+len(data) > len(b.Floats) {
		return
	}
	copy(b.Floats[start:], data)
	b.Uploads++
}

func (g *GL) BufferIndices(target uint32, data []uint32, usage uint32) {
	if b := g.targetBuffer(target); b != nil {
		b.Indices = append([]uint32(nil), data...)
		b.Usage = usage
		b.Uploads++
	}
}

func (g *GL) EnableVertexAttribArray(index uint32) {}

func (g *GL) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	if va, ok := g.VertexArrays[g.BoundVertexArray]; ok {
		va.ArrayBuffer = g.BoundArrayBuffer
		va.Attribs[index] = Attrib{Size: size, Stride: stride, Offset: offset}
	}
}

// DrawElements records the draw along with the Model uniform and texture
// bindings in effect at the time of the call.
func (g *GL) DrawElements(mode uint32, count int32) {
	d := Draw{
		Program:     g.BoundProgram,
		VertexArray: g.BoundVertexArray,
		Count:       count,
		Model:       mgl32.Ident4(),
		Textures:    map[uint32]uint32{},
		Framebuffer: g.BoundFramebuffer,
	}
	if v, ok := g.Uniform(g.BoundProgram, "Model"); ok {
		if m, ok := v.(mgl32.Mat4); ok {
			d.Model = m
		}
	}
	for unit, tex := range g.BoundTextures {
		if tex != 0 {
			d.Textures[unit] = tex
		}
	}
	g.Draws = append(g.Draws, d)
}
