// Package opengl implements gpu.GL on top of go-gl's OpenGL 4.1 core bindings.
package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
)

// Context forwards gpu.GL calls to the OpenGL context current on the
// calling thread.
type Context struct {
	Version  string
	Renderer string
}

var _ gpu.GL = (*Context)(nil)

// New loads the OpenGL function pointers.
// Must be called after the GLFW window context is made current.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	c := &Context{
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}
	logger.Log.Info("OpenGL initialized",
		zap.String("version", c.Version),
		zap.String("renderer", c.Renderer))
	return c, nil
}

// ── Programs ─────────────────────────────────────────────────────────────────

func (c *Context) CompileShader(stage uint32, source string) (uint32, error) {
	shader := gl.CreateShader(stage)
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (c *Context) LinkProgram(shaders ...uint32) (uint32, error) {
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s)
	}
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(log, "\x00"))
	}
	for _, s := range shaders {
		gl.DetachShader(prog, s)
	}
	return prog, nil
}

func (c *Context) DeleteShader(shader uint32)   { gl.DeleteShader(shader) }
func (c *Context) DeleteProgram(program uint32) { gl.DeleteProgram(program) }
func (c *Context) UseProgram(program uint32)    { gl.UseProgram(program) }

func (c *Context) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (c *Context) Uniform1i(location int32, v int32)            { gl.Uniform1i(location, v) }
func (c *Context) Uniform1f(location int32, v float32)          { gl.Uniform1f(location, v) }
func (c *Context) Uniform2f(location int32, x, y float32)       { gl.Uniform2f(location, x, y) }
func (c *Context) Uniform3f(location int32, x, y, z float32)    { gl.Uniform3f(location, x, y, z) }
func (c *Context) Uniform4f(location int32, x, y, z, w float32) { gl.Uniform4f(location, x, y, z, w) }

func (c *Context) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

// ── Fixed-function state ────────────────────────────────────────────────────

func (c *Context) Enable(capability uint32)  { gl.Enable(capability) }
func (c *Context) Disable(capability uint32) { gl.Disable(capability) }
func (c *Context) DepthMask(write bool)      { gl.DepthMask(write) }
func (c *Context) DepthFunc(fn uint32)       { gl.DepthFunc(fn) }
func (c *Context) CullFace(mode uint32)      { gl.CullFace(mode) }
func (c *Context) BlendFunc(src, dst uint32) { gl.BlendFunc(src, dst) }

func (c *Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (c *Context) ClearColor(r, g, b, a float32)       { gl.ClearColor(r, g, b, a) }
func (c *Context) Clear(mask uint32)                   { gl.Clear(mask) }

// ── Geometry ────────────────────────────────────────────────────────────────

func (c *Context) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (c *Context) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }
func (c *Context) BindVertexArray(vao uint32)   { gl.BindVertexArray(vao) }

func (c *Context) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (c *Context) DeleteBuffer(buffer uint32)       { gl.DeleteBuffers(1, &buffer) }
func (c *Context) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (c *Context) BufferFloats(target uint32, data []float32, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (c *Context) BufferSubFloats(target uint32, offset int, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target, offset, len(data)*4, gl.Ptr(data))
}

func (c *Context) BufferIndices(target uint32, data []uint32, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (c *Context) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (c *Context) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (c *Context) DrawElements(mode uint32, count int32) {
	gl.DrawElements(mode, count, gl.UNSIGNED_INT, nil)
}
