package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
)

// ErrFramebufferIncomplete is returned when the driver rejects a render
// target's attachment configuration.
var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

// Attachment describes the storage of one color attachment.
type Attachment struct {
	InternalFormat int32
	Format         uint32
	Type           uint32
}

// G-buffer slots, in attachment order.
const (
	GBufferAlbedo = iota
	GBufferNormal
	GBufferPosition
	GBufferMetallic
	GBufferRoughness
	GBufferEmission
)

// GBufferAttachments is the attachment layout written by the geometry pass.
var GBufferAttachments = []Attachment{
	GBufferAlbedo:    {InternalFormat: int32(gpu.RGBA16F), Format: gpu.RGBA, Type: gpu.Float},
	GBufferNormal:    {InternalFormat: int32(gpu.RGB16F), Format: gpu.RGB, Type: gpu.Float},
	GBufferPosition:  {InternalFormat: int32(gpu.RGB32F), Format: gpu.RGB, Type: gpu.Float},
	GBufferMetallic:  {InternalFormat: int32(gpu.R16F), Format: gpu.Red, Type: gpu.Float},
	GBufferRoughness: {InternalFormat: int32(gpu.R16F), Format: gpu.Red, Type: gpu.Float},
	GBufferEmission:  {InternalFormat: int32(gpu.RGB16F), Format: gpu.RGB, Type: gpu.Float},
}

// RenderTarget is an off-screen framebuffer with a fixed list of color
// attachments and a combined depth-stencil renderbuffer.
type RenderTarget struct {
	gl          gpu.GL
	fbo         uint32
	depth       uint32
	textures    []uint32
	attachments []Attachment
	width       int
	height      int
}

// NewRenderTarget allocates the framebuffer and one texture per attachment,
// bound to COLOR_ATTACHMENT0+i in the given order. The target is returned
// even when the completeness check fails so the caller can Destroy it.
func NewRenderTarget(g gpu.GL, width, height int, attachments []Attachment) (*RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render target size: %dx%d", width, height)
	}

	rt := &RenderTarget{
		gl:          g,
		attachments: append([]Attachment(nil), attachments...),
		width:       width,
		height:      height,
	}

	rt.fbo = g.GenFramebuffer()
	g.BindFramebuffer(gpu.Framebuffer, rt.fbo)

	drawBuffers := make([]uint32, len(attachments))
	for i := range rt.attachments {
		tex := g.GenTexture()
		rt.textures = append(rt.textures, tex)
		g.BindTexture(gpu.Texture2D, tex)
		rt.allocateTexture(i)
		g.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, gpu.Linear)
		g.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, gpu.Linear)
		g.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, gpu.ClampToEdge)
		g.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, gpu.ClampToEdge)

		attachment := gpu.ColorAttachment0 + uint32(i)
		g.FramebufferTexture2D(gpu.Framebuffer, attachment, gpu.Texture2D, tex, 0)
		drawBuffers[i] = attachment
	}
	g.BindTexture(gpu.Texture2D, 0)

	rt.depth = g.GenRenderbuffer()
	g.BindRenderbuffer(gpu.Renderbuffer, rt.depth)
	g.RenderbufferStorage(gpu.Renderbuffer, gpu.Depth24Stencil8, int32(width), int32(height))
	g.FramebufferRenderbuffer(gpu.Framebuffer, gpu.DepthStencilAttachment, gpu.Renderbuffer, rt.depth)
	g.BindRenderbuffer(gpu.Renderbuffer, 0)

	g.DrawBuffers(drawBuffers)

	err := rt.checkComplete()
	g.BindFramebuffer(gpu.Framebuffer, 0)
	if err != nil {
		return rt, err
	}

	logger.Log.Debug("Render target created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("attachments", len(attachments)))
	return rt, nil
}

// allocateTexture specifies storage for attachment i on the currently bound
// texture at the target's size.
func (rt *RenderTarget) allocateTexture(i int) {
	a := rt.attachments[i]
	rt.gl.TexImage2D(gpu.Texture2D, a.InternalFormat, int32(rt.width), int32(rt.height), a.Format, a.Type, nil)
}

// checkComplete expects the target's framebuffer to be bound.
func (rt *RenderTarget) checkComplete() error {
	if status := rt.gl.CheckFramebufferStatus(gpu.Framebuffer); status != gpu.FramebufferComplete {
		logger.Log.Error("Render target incomplete", zap.Uint32("status", status))
		return fmt.Errorf("%w: status 0x%X", ErrFramebufferIncomplete, status)
	}
	return nil
}

// Bind makes the target the draw destination and sets the viewport to its
// size. The previous viewport is not restored by Unbind.
func (rt *RenderTarget) Bind() {
	rt.gl.BindFramebuffer(gpu.Framebuffer, rt.fbo)
	rt.gl.Viewport(0, 0, int32(rt.width), int32(rt.height))
}

// Unbind restores the default framebuffer.
func (rt *RenderTarget) Unbind() {
	rt.gl.BindFramebuffer(gpu.Framebuffer, 0)
}

// Resize re-specifies every attachment and the depth-stencil buffer at the
// new size. Texture handles and attachment order stay the same, so materials
// that borrowed them keep working.
func (rt *RenderTarget) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid render target size: %dx%d", width, height)
	}
	if width == rt.width && height == rt.height {
		return nil
	}
	rt.width, rt.height = width, height

	for i, tex := range rt.textures {
		rt.gl.BindTexture(gpu.Texture2D, tex)
		rt.allocateTexture(i)
	}
	rt.gl.BindTexture(gpu.Texture2D, 0)

	rt.gl.BindRenderbuffer(gpu.Renderbuffer, rt.depth)
	rt.gl.RenderbufferStorage(gpu.Renderbuffer, gpu.Depth24Stencil8, int32(width), int32(height))
	rt.gl.BindRenderbuffer(gpu.Renderbuffer, 0)

	rt.gl.BindFramebuffer(gpu.Framebuffer, rt.fbo)
	err := rt.checkComplete()
	rt.gl.BindFramebuffer(gpu.Framebuffer, 0)
	return err
}

// Texture returns the texture behind attachment i, or 0 if out of range.
func (rt *RenderTarget) Texture(i int) uint32 {
	if i < 0 || i >= len(rt.textures) {
		return 0
	}
	return rt.textures[i]
}

// Textures returns the attachment textures in attachment order.
func (rt *RenderTarget) Textures() []uint32 {
	return append([]uint32(nil), rt.textures...)
}

func (rt *RenderTarget) AttachmentCount() int { return len(rt.textures) }

func (rt *RenderTarget) Size() (width, height int) { return rt.width, rt.height }

// TextureSize asks the graphics context for the allocated size of
// attachment i.
func (rt *RenderTarget) TextureSize(i int) (width, height int) {
	tex := rt.Texture(i)
	if tex == 0 {
		return 0, 0
	}
	rt.gl.BindTexture(gpu.Texture2D, tex)
	w := rt.gl.GetTexLevelParameteri(gpu.Texture2D, 0, gpu.TextureWidth)
	h := rt.gl.GetTexLevelParameteri(gpu.Texture2D, 0, gpu.TextureHeight)
	rt.gl.BindTexture(gpu.Texture2D, 0)
	return int(w), int(h)
}

// DepthSize asks the graphics context for the allocated size of the
// depth-stencil buffer.
func (rt *RenderTarget) DepthSize() (width, height int) {
	rt.gl.BindRenderbuffer(gpu.Renderbuffer, rt.depth)
	w := rt.gl.GetRenderbufferParameteri(gpu.Renderbuffer, gpu.RenderbufferWidth)
	h := rt.gl.GetRenderbufferParameteri(gpu.Renderbuffer, gpu.RenderbufferHeight)
	rt.gl.BindRenderbuffer(gpu.Renderbuffer, 0)
	return int(w), int(h)
}

// Destroy releases the framebuffer, its textures and the depth buffer.
func (rt *RenderTarget) Destroy() {
	for _, tex := range rt.textures {
		rt.gl.DeleteTexture(tex)
	}
	rt.textures = nil
	if rt.depth != 0 {
		rt.gl.DeleteRenderbuffer(rt.depth)
		rt.depth = 0
	}
	if rt.fbo != 0 {
		rt.gl.DeleteFramebuffer(rt.fbo)
		rt.fbo = 0
	}
}
