// Package materials pairs shader programs with textures and render state.
package materials

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/textures"
)

// DepthSortingMode selects depth test, depth write and compare function.
type DepthSortingMode int

const (
	DepthReadWrite DepthSortingMode = iota // test less, write
	DepthWrite                             // test always, write
	DepthRead                              // test less, no write
	DepthNone                              // no depth test
)

func (m DepthSortingMode) String() string {
	switch m {
	case DepthReadWrite:
		return "ReadWrite"
	case DepthWrite:
		return "Write"
	case DepthRead:
		return "Read"
	case DepthNone:
		return "None"
	}
	return fmt.Sprintf("DepthSortingMode(%d)", int(m))
}

type BlendingMode int

const (
	BlendNone BlendingMode = iota
	BlendAlpha
	BlendAdditive
	BlendMultiply
)

func (m BlendingMode) String() string {
	switch m {
	case BlendNone:
		return "None"
	case BlendAlpha:
		return "AlphaBlend"
	case BlendAdditive:
		return "Additive"
	case BlendMultiply:
		return "Multiply"
	}
	return fmt.Sprintf("BlendingMode(%d)", int(m))
}

type CullingMode int

const (
	CullBack CullingMode = iota
	CullFront
	CullNone
)

// ErrInvalidTextureIndex is returned for texture units outside the slot table.
var ErrInvalidTextureIndex = errors.New("invalid texture index")

// textureSlot is one texture unit. Borrowed handles belong to someone else
// (typically a render target) and are never deleted by the material.
type textureSlot struct {
	handle   uint32
	borrowed bool
}

// Material owns a Shader and the textures bound to consecutive units, and
// carries the render state applied by Bind.
type Material struct {
	Name string

	gl       gpu.GL
	fsys     fs.FS // textures
	shaderFS fs.FS
	shader   *Shader
	textures []textureSlot

	depth     DepthSortingMode
	blending  BlendingMode
	culling   CullingMode
	sortOrder int
}

// New builds the shader from fsys and loads each texture path into the unit
// matching its position. Load failures are collected into the returned error;
// the material is always returned and usable.
func New(g gpu.GL, fsys fs.FS, vertPath, fragPath string, texturePaths ...string) (*Material, error) {
	shader, err := NewShader(g, fsys, vertPath, fragPath)
	errs := []error{err}

	m := NewWithShader(g, fsys, shader)
	for unit, path := range texturePaths {
		errs = append(errs, m.LoadTexture(unit, path, textures.DefaultFilter))
	}
	return m, errors.Join(errs...)
}

// NewWithShader wraps an already built shader. fsys is used by later
// LoadTexture calls and may be nil if none are needed. SetShader reads from
// the file system shader was loaded from, or fsys for in-memory shaders.
func NewWithShader(g gpu.GL, fsys fs.FS, shader *Shader) *Material {
	m := &Material{gl: g, fsys: fsys, shaderFS: fsys, shader: shader}
	if shader.fsys != nil {
		m.shaderFS = shader.fsys
	}
	if shader.HasUniform("Color") {
		shader.SetVec4("Color", mgl32.Vec4{1, 1, 1, 1})
	}
	return m
}

func (m *Material) Shader() *Shader { return m.shader }

// SetShader replaces the program, destroying the old one first.
func (m *Material) SetShader(vertPath, fragPath string) error {
	if m.shader != nil {
		m.shader.Destroy()
	}
	shader, err := NewShader(m.gl, m.shaderFS, vertPath, fragPath)
	m.shader = shader
	return err
}

// Bind makes the shader current, applies depth, cull and blend state and
// binds every texture slot to GL_TEXTURE0+unit in ascending order.
func (m *Material) Bind() {
	m.shader.Bind()

	switch m.depth {
	case DepthReadWrite:
		m.gl.Enable(gpu.DepthTest)
		m.gl.DepthMask(true)
		m.gl.DepthFunc(gpu.Less)
	case DepthWrite:
		m.gl.Enable(gpu.DepthTest)
		m.gl.DepthMask(true)
		m.gl.DepthFunc(gpu.Always)
	case DepthRead:
		m.gl.Enable(gpu.DepthTest)
		m.gl.DepthMask(false)
		m.gl.DepthFunc(gpu.Less)
	case DepthNone:
		m.gl.Disable(gpu.DepthTest)
	}

	switch m.culling {
	case CullBack:
		m.gl.Enable(gpu.CullFace)
		m.gl.CullFace(gpu.Back)
	case CullFront:
		m.gl.Enable(gpu.CullFace)
		m.gl.CullFace(gpu.Front)
	case CullNone:
		m.gl.Disable(gpu.CullFace)
	}

	switch m.blending {
	case BlendNone:
		m.gl.Disable(gpu.Blend)
	case BlendAlpha:
		m.gl.Enable(gpu.Blend)
		m.gl.BlendFunc(gpu.SrcAlpha, gpu.OneMinusSrcAlpha)
	case BlendAdditive:
		m.gl.Enable(gpu.Blend)
		m.gl.BlendFunc(gpu.SrcAlpha, gpu.One)
	case BlendMultiply:
		m.gl.Enable(gpu.Blend)
		m.gl.BlendFunc(gpu.DstColor, gpu.Zero)
	}

	for unit, slot := range m.textures {
		m.gl.ActiveTexture(gpu.Texture0 + uint32(unit))
		m.gl.BindTexture(gpu.Texture2D, slot.handle)
	}
}

// grow extends the slot table so unit is addressable. New slots are empty.
func (m *Material) grow(unit int) {
	for len(m.textures) <= unit {
		m.textures = append(m.textures, textureSlot{})
	}
}

// release deletes the texture in unit if the material owns it.
func (m *Material) release(unit int) {
	slot := m.textures[unit]
	if slot.handle != 0 && !slot.borrowed {
		m.gl.DeleteTexture(slot.handle)
	}
	m.textures[unit] = textureSlot{}
}

// LoadTexture loads path into unit, releasing whatever the unit held. If the
// file cannot be read or decoded the unit still receives the allocated handle.
func (m *Material) LoadTexture(unit int, path string, filter textures.Filter) error {
	if unit < 0 {
		return m.invalidUnit(unit)
	}
	m.grow(unit)
	m.release(unit)

	id, err := textures.Load(m.gl, m.fsys, path, filter)
	m.textures[unit] = textureSlot{handle: id}
	if err != nil {
		logger.Log.Error("Material texture load failed",
			zap.String("material", m.Name),
			zap.Int("unit", unit),
			zap.Error(err))
	}
	return err
}

// LoadTextureFromData uploads raw 3- or 4-channel pixels into unit.
func (m *Material) LoadTextureFromData(unit int, data []byte, width, height, channels int, filter textures.Filter) error {
	if unit < 0 {
		return m.invalidUnit(unit)
	}
	id, err := textures.FromData(m.gl, data, width, height, channels, filter)
	if err != nil {
		logger.Log.Error("Material texture upload failed",
			zap.String("material", m.Name),
			zap.Int("unit", unit),
			zap.Error(err))
		return err
	}
	m.grow(unit)
	m.release(unit)
	m.textures[unit] = textureSlot{handle: id}
	return nil
}

// SetTexture places a handle the material does not own into unit. Destroy
// and later replacements leave borrowed handles alone.
func (m *Material) SetTexture(unit int, handle uint32) {
	if unit < 0 {
		_ = m.invalidUnit(unit)
		return
	}
	m.grow(unit)
	m.release(unit)
	m.textures[unit] = textureSlot{handle: handle, borrowed: true}
}

// RemoveTexture releases the slot at index and shifts later slots down.
func (m *Material) RemoveTexture(index int) error {
	if index < 0 || index >= len(m.textures) {
		return m.invalidUnit(index)
	}
	m.release(index)
	m.textures = append(m.textures[:index], m.textures[index+1:]...)
	return nil
}

func (m *Material) invalidUnit(unit int) error {
	logger.Log.Error("Invalid texture index",
		zap.String("material", m.Name),
		zap.Int("index", unit),
		zap.Int("slots", len(m.textures)))
	return fmt.Errorf("%w: %d", ErrInvalidTextureIndex, unit)
}

// Texture returns the handle in unit, or 0 when the unit is empty or absent.
func (m *Material) Texture(unit int) uint32 {
	if unit < 0 || unit >= len(m.textures) {
		return 0
	}
	return m.textures[unit].handle
}

func (m *Material) TextureCount() int { return len(m.textures) }

func (m *Material) SetDepthSortingMode(mode DepthSortingMode) { m.depth = mode }
func (m *Material) SetBlendingMode(mode BlendingMode)         { m.blending = mode }
func (m *Material) SetCullingMode(mode CullingMode)           { m.culling = mode }
func (m *Material) SetSortOrder(order int)                    { m.sortOrder = order }

func (m *Material) DepthSortingMode() DepthSortingMode { return m.depth }
func (m *Material) BlendingMode() BlendingMode         { return m.blending }
func (m *Material) CullingMode() CullingMode           { return m.culling }
func (m *Material) SortOrder() int                     { return m.sortOrder }

// Destroy releases owned textures and the shader. Borrowed textures are left
// to their owner.
func (m *Material) Destroy() {
	for unit := range m.textures {
		m.release(unit)
	}
	m.textures = nil
	if m.shader != nil {
		m.shader.Destroy()
	}
}
