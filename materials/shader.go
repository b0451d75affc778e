package materials

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
)

// ErrInvalidProgram is reported when a shader failed to compile or link.
var ErrInvalidProgram = errors.New("invalid shader program")

// Shader is a linked vertex+fragment program with a lazily filled cache of
// uniform locations.
//
// A Shader whose compile or link failed keeps program 0. Binding it or
// setting uniforms on it logs a warning and does nothing.
type Shader struct {
	VertexPath   string
	FragmentPath string

	gl       gpu.GL
	fsys     fs.FS
	program  uint32
	uniforms map[string]int32
}

// NewShader reads both stages from fsys and builds the program. On failure
// the returned Shader is still usable (as a no-op) and the error says why.
func NewShader(g gpu.GL, fsys fs.FS, vertPath, fragPath string) (*Shader, error) {
	s := &Shader{VertexPath: vertPath, FragmentPath: fragPath, gl: g, fsys: fsys, uniforms: map[string]int32{}}

	if fsys == nil {
		return s, s.fail(errors.New("no file system for shader sources"))
	}
	vert, err := fs.ReadFile(fsys, vertPath)
	if err != nil {
		return s, s.fail(fmt.Errorf("read vertex shader: %w", err))
	}
	frag, err := fs.ReadFile(fsys, fragPath)
	if err != nil {
		return s, s.fail(fmt.Errorf("read fragment shader: %w", err))
	}
	return s, s.build(string(vert), string(frag))
}

// NewShaderFromSource builds a program from in-memory sources.
func NewShaderFromSource(g gpu.GL, vertSrc, fragSrc string) (*Shader, error) {
	s := &Shader{gl: g, uniforms: map[string]int32{}}
	return s, s.build(vertSrc, fragSrc)
}

func (s *Shader) build(vertSrc, fragSrc string) error {
	vert, err := s.gl.CompileShader(gpu.VertexShader, vertSrc)
	if err != nil {
		return s.fail(fmt.Errorf("vertex: %w", err))
	}
	defer s.gl.DeleteShader(vert)

	frag, err := s.gl.CompileShader(gpu.FragmentShader, fragSrc)
	if err != nil {
		return s.fail(fmt.Errorf("fragment: %w", err))
	}
	defer s.gl.DeleteShader(frag)

	prog, err := s.gl.LinkProgram(vert, frag)
	if err != nil {
		return s.fail(fmt.Errorf("link: %w", err))
	}
	s.program = prog
	return nil
}

func (s *Shader) fail(err error) error {
	s.program = 0
	err = fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	logger.Log.Error("Shader build failed",
		zap.String("vertex", s.VertexPath),
		zap.String("fragment", s.FragmentPath),
		zap.Error(err))
	return err
}

// ID returns the program handle, 0 when invalid.
func (s *Shader) ID() uint32 { return s.program }

func (s *Shader) Valid() bool { return s.program != 0 }

// Bind makes the program current. It reports false for an invalid program.
func (s *Shader) Bind() bool {
	if s.program == 0 {
		logger.Log.Warn("Bind on invalid shader program",
			zap.String("vertex", s.VertexPath),
			zap.String("fragment", s.FragmentPath))
		return false
	}
	s.gl.UseProgram(s.program)
	return true
}

// UniformLocation returns the cached location of name, querying the program
// on first use. Missing uniforms are cached as -1 and reported once.
func (s *Shader) UniformLocation(name string) int32 {
	if s.program == 0 {
		return -1
	}
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	loc := s.gl.GetUniformLocation(s.program, name)
	s.uniforms[name] = loc
	if loc == -1 {
		logger.Log.Warn("Uniform not found",
			zap.String("uniform", name),
			zap.Uint32("program", s.program))
	}
	return loc
}

// HasUniform reports whether the program declares an active uniform called
// name. Unlike UniformLocation it does not warn when the uniform is missing.
func (s *Shader) HasUniform(name string) bool {
	if s.program == 0 {
		return false
	}
	loc, ok := s.uniforms[name]
	if !ok {
		loc = s.gl.GetUniformLocation(s.program, name)
		s.uniforms[name] = loc
	}
	return loc != -1
}

func (s *Shader) SetInt(name string, v int32) {
	if s.Bind() {
		s.gl.Uniform1i(s.UniformLocation(name), v)
	}
}

func (s *Shader) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	s.SetInt(name, i)
}

func (s *Shader) SetFloat(name string, v float32) {
	if s.Bind() {
		s.gl.Uniform1f(s.UniformLocation(name), v)
	}
}

func (s *Shader) SetVec2(name string, v mgl32.Vec2) {
	if s.Bind() {
		s.gl.Uniform2f(s.UniformLocation(name), v[0], v[1])
	}
}

func (s *Shader) SetVec3(name string, v mgl32.Vec3) {
	if s.Bind() {
		s.gl.Uniform3f(s.UniformLocation(name), v[0], v[1], v[2])
	}
}

func (s *Shader) SetVec4(name string, v mgl32.Vec4) {
	if s.Bind() {
		s.gl.Uniform4f(s.UniformLocation(name), v[0], v[1], v[2], v[3])
	}
}

func (s *Shader) SetMat4(name string, m mgl32.Mat4) {
	if s.Bind() {
		s.gl.UniformMatrix4fv(s.UniformLocation(name), m)
	}
}

// Destroy releases the program and clears the uniform cache.
func (s *Shader) Destroy() {
	if s.program != 0 {
		s.gl.DeleteProgram(s.program)
		s.program = 0
	}
	clear(s.uniforms)
}
