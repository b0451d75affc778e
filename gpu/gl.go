// Package gpu describes the graphics context the engine draws through.
//
// Every component issues its GPU work through the GL interface so that the
// same code drives the go-gl backend (internal/opengl) and the recording
// context used in tests (gpu/gputest). Handles are plain OpenGL object names
// and 0 is always the invalid handle.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// GL is the subset of OpenGL 4.1 core the engine uses, with Go-shaped
// signatures in place of raw pointers.
type GL interface {
	// Programs
	CompileShader(stage uint32, source string) (uint32, error)
	LinkProgram(shaders ...uint32) (uint32, error)
	DeleteShader(shader uint32)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	UniformMatrix4fv(location int32, m mgl32.Mat4)

	// Fixed-function state
	Enable(capability uint32)
	Disable(capability uint32)
	DepthMask(write bool)
	DepthFunc(fn uint32)
	CullFace(mode uint32)
	BlendFunc(src, dst uint32)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)

	// Textures
	GenTexture() uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	// TexImage2D specifies storage for the texture bound to target on the
	// active unit. pixels may be nil to allocate uninitialised storage.
	TexImage2D(target uint32, internalFormat int32, width, height int32, format, xtype uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)
	GenerateMipmap(target uint32)
	GetTexLevelParameteri(target uint32, level int32, pname uint32) int32

	// Framebuffers
	GenFramebuffer() uint32
	DeleteFramebuffer(framebuffer uint32)
	BindFramebuffer(target, framebuffer uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32)
	FramebufferRenderbuffer(target, attachment, rbTarget, renderbuffer uint32)
	CheckFramebufferStatus(target uint32) uint32
	DrawBuffers(attachments []uint32)
	GenRenderbuffer() uint32
	DeleteRenderbuffer(renderbuffer uint32)
	BindRenderbuffer(target, renderbuffer uint32)
	RenderbufferStorage(target, internalFormat uint32, width, height int32)
	GetRenderbufferParameteri(target, pname uint32) int32

	// Geometry
	GenVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target, buffer uint32)
	BufferFloats(target uint32, data []float32, usage uint32)
	BufferSubFloats(target uint32, offset int, data []float32)
	BufferIndices(target uint32, data []uint32, usage uint32)
	EnableVertexAttribArray(index uint32)
	// VertexAttribPointer declares a float attribute; stride and offset are in bytes.
	VertexAttribPointer(index uint32, size int32, stride int32, offset int)
	DrawElements(mode uint32, count int32)
}

// OpenGL enum values used by the engine. They match the GL headers so the
// go-gl backend passes them through unchanged.
const (
	// Shader stages
	VertexShader   uint32 = 0x8B31
	FragmentShader uint32 = 0x8B30

	// Capabilities
	DepthTest uint32 = 0x0B71
	CullFace  uint32 = 0x0B44
	Blend     uint32 = 0x0BE2

	// Compare functions
	Less   uint32 = 0x0201
	LEqual uint32 = 0x0203
	Always uint32 = 0x0207

	// Faces
	Front        uint32 = 0x0404
	Back         uint32 = 0x0405
	FrontAndBack uint32 = 0x0408

	// Blend factors
	Zero             uint32 = 0
	One              uint32 = 1
	SrcAlpha         uint32 = 0x0302
	OneMinusSrcAlpha uint32 = 0x0303
	DstColor         uint32 = 0x0306

	// Clear bits
	ColorBufferBit   uint32 = 0x4000
	DepthBufferBit   uint32 = 0x0100
	StencilBufferBit uint32 = 0x0400

	// Textures
	Texture2D        uint32 = 0x0DE1
	Texture0         uint32 = 0x84C0
	TextureMinFilter uint32 = 0x2801
	TextureMagFilter uint32 = 0x2800
	TextureWrapS     uint32 = 0x2802
	TextureWrapT     uint32 = 0x2803
	TextureWidth     uint32 = 0x1000
	TextureHeight    uint32 = 0x1001

	// Filters and wrap modes
	Nearest              int32 = 0x2600
	Linear               int32 = 0x2601
	NearestMipmapNearest int32 = 0x2700
	LinearMipmapNearest  int32 = 0x2701
	NearestMipmapLinear  int32 = 0x2702
	LinearMipmapLinear   int32 = 0x2703
	Repeat               int32 = 0x2901
	ClampToEdge          int32 = 0x812F

	// Pixel formats
	Red             uint32 = 0x1903
	RG              uint32 = 0x8227
	RGB             uint32 = 0x1907
	RGBA            uint32 = 0x1908
	R8              uint32 = 0x8229
	RGB8            uint32 = 0x8051
	RGBA8           uint32 = 0x8058
	R16F            uint32 = 0x822D
	R32F            uint32 = 0x822E
	RGB16F          uint32 = 0x881B
	RGBA16F         uint32 = 0x881A
	RGB32F          uint32 = 0x8815
	RGBA32F         uint32 = 0x8814
	Depth24Stencil8 uint32 = 0x88F0

	// Component types
	UnsignedByte uint32 = 0x1401
	UnsignedInt  uint32 = 0x1405
	Float        uint32 = 0x1406

	// Framebuffers
	Framebuffer            uint32 = 0x8D40
	Renderbuffer           uint32 = 0x8D41
	ColorAttachment0       uint32 = 0x8CE0
	DepthStencilAttachment uint32 = 0x821A
	FramebufferComplete    uint32 = 0x8CD5
	RenderbufferWidth      uint32 = 0x8D42
	RenderbufferHeight     uint32 = 0x8D43

	// Buffers and draws
	ArrayBuffer        uint32 = 0x8892
	ElementArrayBuffer uint32 = 0x8893
	StaticDraw         uint32 = 0x88E4
	DynamicDraw        uint32 = 0x88E8
	Triangles          uint32 = 0x0004
)
