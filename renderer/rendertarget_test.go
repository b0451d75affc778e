package renderer

import (
	"errors"
	"testing"

	"deferred-engine/gpu"
	"deferred-engine/gpu/gputest"
)

func TestRenderTargetAttachments(t *testing.T) {
	g := gputest.New()
	rt, err := NewRenderTarget(g, 640, 480, GBufferAttachments)
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}

	if rt.AttachmentCount() != len(GBufferAttachments) {
		t.Fatalf("AttachmentCount: expected %d, got %d", len(GBufferAttachments), rt.AttachmentCount())
	}
	var fb *gputest.Framebuffer
	for _, f := range g.Framebuffers {
		fb = f
	}
	if fb == nil {
		t.Fatal("NewRenderTarget: no framebuffer created")
	}
	if len(fb.DrawBuffers) != len(GBufferAttachments) {
		t.Errorf("DrawBuffers: expected %d, got %d", len(GBufferAttachments), len(fb.DrawBuffers))
	}
	for i, a := range GBufferAttachments {
		tex := rt.Texture(i)
		if fb.Attachments[gpu.ColorAttachment0+uint32(i)] != tex {
			t.Errorf("attachment %d: expected texture %d, got %d", i, tex, fb.Attachments[gpu.ColorAttachment0+uint32(i)])
		}
		if fb.DrawBuffers[i] != gpu.ColorAttachment0+uint32(i) {
			t.Errorf("draw buffer %d: expected 0x%X, got 0x%X", i, gpu.ColorAttachment0+uint32(i), fb.DrawBuffers[i])
		}
		got := g.Textures[tex]
		if got.InternalFormat != a.InternalFormat || got.Format != a.Format || got.Type != a.Type {
			t.Errorf("attachment %d: expected format %+v, got %+v", i, a, got)
		}
		if got.Params[gpu.TextureWrapS] != gpu.ClampToEdge {
			t.Errorf("attachment %d: expected clamp-to-edge wrap", i)
		}
	}
	if fb.Attachments[gpu.DepthStencilAttachment] == 0 {
		t.Errorf("NewRenderTarget: no depth-stencil attachment")
	}
	if g.BoundFramebuffer != 0 {
		t.Errorf("NewRenderTarget: expected default framebuffer bound after construction")
	}
}

func TestRenderTargetResize(t *testing.T) {
	g := gputest.New()
	rt, err := NewRenderTarget(g, 800, 600, GBufferAttachments)
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}
	before := rt.Textures()

	for _, size := range [][2]int{{1024, 768}, {320, 200}, {320, 200}, {1, 1}, {1920, 1080}} {
		if err := rt.Resize(size[0], size[1]); err != nil {
			t.Fatalf("Resize(%v): %v", size, err)
		}
		for i := range GBufferAttachments {
			w, h := rt.TextureSize(i)
			if w != size[0] || h != size[1] {
				t.Errorf("Resize(%v): attachment %d expected %dx%d, got %dx%d", size, i, size[0], size[1], w, h)
			}
		}
		if w, h := rt.DepthSize(); w != size[0] || h != size[1] {
			t.Errorf("Resize(%v): depth expected %dx%d, got %dx%d", size, size[0], size[1], w, h)
		}
	}

	after := rt.Textures()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Resize: attachment %d handle changed from %d to %d", i, before[i], after[i])
		}
	}
	if err := rt.Resize(0, 10); err == nil {
		t.Errorf("Resize(0, 10): expected error")
	}
	if w, h := rt.Size(); w != 1920 || h != 1080 {
		t.Errorf("Resize(0, 10): size changed to %dx%d", w, h)
	}
}

func TestRenderTargetIncomplete(t *testing.T) {
	g := gputest.New()
	g.FailFramebuffers = true
	rt, err := NewRenderTarget(g, 64, 64, GBufferAttachments[:1])
	if !errors.Is(err, ErrFramebufferIncomplete) {
		t.Fatalf("NewRenderTarget: expected ErrFramebufferIncomplete, got %v", err)
	}
	if rt == nil {
		t.Fatal("NewRenderTarget: expected target to destroy")
	}
	rt.Destroy()
	if len(g.Textures) != 0 || len(g.Framebuffers) != 0 || len(g.Renderbuffers) != 0 {
		t.Errorf("Destroy: leaked objects")
	}

	if _, err := NewRenderTarget(g, 0, 64, GBufferAttachments); err == nil {
		t.Errorf("NewRenderTarget(0, 64): expected error")
	}
}

func TestRenderTargetBindSetsViewport(t *testing.T) {
	g := gputest.New()
	rt, err := NewRenderTarget(g, 256, 128, GBufferAttachments[:2])
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}
	g.Viewport(10, 20, 300, 400)

	rt.Bind()
	if g.BoundFramebuffer == 0 {
		t.Errorf("Bind: framebuffer not bound")
	}
	if g.ViewportBox != [4]int32{0, 0, 256, 128} {
		t.Errorf("Bind: expected viewport 256x128, got %v", g.ViewportBox)
	}

	rt.Unbind()
	if g.BoundFramebuffer != 0 {
		t.Errorf("Unbind: expected default framebuffer, got %d", g.BoundFramebuffer)
	}
	if g.ViewportBox != [4]int32{0, 0, 256, 128} {
		t.Errorf("Unbind: viewport should be left to the caller, got %v", g.ViewportBox)
	}
}
