package materials

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/gpu"
	"deferred-engine/gpu/gputest"
	"deferred-engine/textures"
)

func testFS(t *testing.T) fstest.MapFS {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return fstest.MapFS{
		"m.vert":     {Data: []byte(testVert)},
		"m.frag":     {Data: []byte(testFrag)},
		"alt.vert":   {Data: []byte(testVert)},
		"alt.frag":   {Data: []byte(testFrag)},
		"albedo.png": {Data: buf.Bytes()},
	}
}

func TestMaterialBindWithoutTextures(t *testing.T) {
	g := gputest.New()
	m, err := New(g, testFS(t), "m.vert", "m.frag")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	binds := g.TextureBindCalls
	m.Bind()
	if g.TextureBindCalls != binds {
		t.Errorf("Bind: expected no texture binds, got %d", g.TextureBindCalls-binds)
	}
	if g.BoundProgram != m.Shader().ID() {
		t.Errorf("Bind: expected program %d, got %d", m.Shader().ID(), g.BoundProgram)
	}
	if v, _ := g.Uniform(m.Shader().ID(), "Color"); v != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("New: expected default Color vec4(1), got %v", v)
	}
}

func TestMaterialDepthStates(t *testing.T) {
	tests := []struct {
		mode  DepthSortingMode
		test  bool
		write bool
		fn    uint32
	}{
		{DepthReadWrite, true, true, gpu.Less},
		{DepthWrite, true, true, gpu.Always},
		{DepthRead, true, false, gpu.Less},
	}
	for _, tt := range tests {
		g := gputest.New()
		m, _ := New(g, testFS(t), "m.vert", "m.frag")
		m.SetDepthSortingMode(tt.mode)
		m.Bind()
		if g.Enabled[gpu.DepthTest] != tt.test || g.DepthWrite != tt.write || g.DepthFn != tt.fn {
			t.Errorf("%v: expected test=%v write=%v fn=0x%X, got test=%v write=%v fn=0x%X",
				tt.mode, tt.test, tt.write, tt.fn, g.Enabled[gpu.DepthTest], g.DepthWrite, g.DepthFn)
		}
	}

	g := gputest.New()
	m, _ := New(g, testFS(t), "m.vert", "m.frag")
	g.Enable(gpu.DepthTest)
	m.SetDepthSortingMode(DepthNone)
	m.Bind()
	if g.Enabled[gpu.DepthTest] {
		t.Errorf("None: depth test should be disabled")
	}
}

func TestMaterialBlendStates(t *testing.T) {
	tests := []struct {
		mode     BlendingMode
		enabled  bool
		src, dst uint32
	}{
		{BlendNone, false, gpu.One, gpu.Zero},
		{BlendAlpha, true, gpu.SrcAlpha, gpu.OneMinusSrcAlpha},
		{BlendAdditive, true, gpu.SrcAlpha, gpu.One},
		{BlendMultiply, true, gpu.DstColor, gpu.Zero},
	}
	for _, tt := range tests {
		g := gputest.New()
		m, _ := New(g, testFS(t), "m.vert", "m.frag")
		m.SetBlendingMode(tt.mode)
		m.Bind()
		if g.Enabled[gpu.Blend] != tt.enabled {
			t.Errorf("%v: expected blend enabled=%v", tt.mode, tt.enabled)
		}
		if tt.enabled && (g.BlendSrc != tt.src || g.BlendDst != tt.dst) {
			t.Errorf("%v: expected func (0x%X, 0x%X), got (0x%X, 0x%X)", tt.mode, tt.src, tt.dst, g.BlendSrc, g.BlendDst)
		}
	}
}

func TestMaterialCulling(t *testing.T) {
	g := gputest.New()
	m, _ := New(g, testFS(t), "m.vert", "m.frag")

	m.SetCullingMode(CullFront)
	m.Bind()
	if !g.Enabled[gpu.CullFace] || g.CullMode != gpu.Front {
		t.Errorf("Front: expected front-face culling")
	}
	m.SetCullingMode(CullNone)
	m.Bind()
	if g.Enabled[gpu.CullFace] {
		t.Errorf("None: culling should be disabled")
	}
	m.SetCullingMode(CullBack)
	m.Bind()
	if !g.Enabled[gpu.CullFace] || g.CullMode != gpu.Back {
		t.Errorf("Back: expected back-face culling")
	}
}

func TestLoadTextureGrowsSlots(t *testing.T) {
	g := gputest.New()
	m, _ := New(g, testFS(t), "m.vert", "m.frag")

	if err := m.LoadTexture(3, "albedo.png", textures.DefaultFilter); err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if m.TextureCount() != 4 {
		t.Fatalf("LoadTexture: expected 4 slots, got %d", m.TextureCount())
	}
	for unit := 0; unit < 3; unit++ {
		if m.Texture(unit) != 0 {
			t.Errorf("LoadTexture: slot %d should be empty, got %d", unit, m.Texture(unit))
		}
	}

	m.Bind()
	if g.BoundTextures[3] != m.Texture(3) {
		t.Errorf("Bind: unit 3 expected %d, got %d", m.Texture(3), g.BoundTextures[3])
	}

	old := m.Texture(3)
	if err := m.LoadTexture(3, "albedo.png", textures.DefaultFilter); err != nil {
		t.Fatal(err)
	}
	if g.TextureAlive(old) {
		t.Errorf("LoadTexture: replaced texture %d not released", old)
	}
	if m.TextureCount() != 4 {
		t.Errorf("LoadTexture: replacing must not grow, got %d slots", m.TextureCount())
	}
}

func TestLoadTextureMissingFileKeepsHandle(t *testing.T) {
	observeLogs(t)
	g := gputest.New()
	m, err := New(g, testFS(t), "m.vert", "m.frag", "albedo.png", "missing.png")
	if err == nil {
		t.Fatalf("New: expected error for missing texture")
	}
	if m.TextureCount() != 2 || m.Texture(1) == 0 {
		t.Errorf("New: missing texture should still occupy unit 1")
	}
}

func TestBorrowedTexturesSurviveDestroy(t *testing.T) {
	g := gputest.New()
	borrowed := g.GenTexture()

	m, _ := New(g, testFS(t), "m.vert", "m.frag", "albedo.png")
	owned := m.Texture(0)
	m.SetTexture(2, borrowed)
	if m.TextureCount() != 3 {
		t.Fatalf("SetTexture: expected 3 slots, got %d", m.TextureCount())
	}

	m.Destroy()
	if g.TextureAlive(owned) {
		t.Errorf("Destroy: owned texture %d not released", owned)
	}
	if !g.TextureAlive(borrowed) {
		t.Errorf("Destroy: borrowed texture %d was deleted", borrowed)
	}
}

func TestSetTextureOverBorrowed(t *testing.T) {
	g := gputest.New()
	a, b := g.GenTexture(), g.GenTexture()
	m, _ := New(g, testFS(t), "m.vert", "m.frag")
	m.SetTexture(0, a)
	m.SetTexture(0, b)
	if !g.TextureAlive(a) || m.Texture(0) != b {
		t.Errorf("SetTexture: replacing a borrowed handle must not delete it")
	}
}

func TestRemoveTexture(t *testing.T) {
	observeLogs(t)
	g := gputest.New()
	m, _ := New(g, testFS(t), "m.vert", "m.frag", "albedo.png", "albedo.png")
	second := m.Texture(1)

	if err := m.RemoveTexture(5); !errors.Is(err, ErrInvalidTextureIndex) {
		t.Errorf("RemoveTexture: expected ErrInvalidTextureIndex, got %v", err)
	}
	if m.TextureCount() != 2 {
		t.Errorf("RemoveTexture: out of range must be a no-op")
	}

	first := m.Texture(0)
	if err := m.RemoveTexture(0); err != nil {
		t.Fatal(err)
	}
	if m.TextureCount() != 1 || m.Texture(0) != second {
		t.Errorf("RemoveTexture: later slots should shift down")
	}
	if g.TextureAlive(first) {
		t.Errorf("RemoveTexture: removed texture not released")
	}
}

func TestLoadTextureFromData(t *testing.T) {
	observeLogs(t)
	g := gputest.New()
	m, _ := New(g, testFS(t), "m.vert", "m.frag")
	if err := m.LoadTextureFromData(1, make([]byte, 16), 2, 2, 4, textures.DefaultFilter); err != nil {
		t.Fatalf("LoadTextureFromData: %v", err)
	}
	if m.TextureCount() != 2 || m.Texture(1) == 0 {
		t.Errorf("LoadTextureFromData: expected unit 1 filled")
	}
	if err := m.LoadTextureFromData(0, make([]byte, 4), 2, 2, 1, textures.DefaultFilter); !errors.Is(err, textures.ErrUnsupportedChannels) {
		t.Errorf("LoadTextureFromData: expected ErrUnsupportedChannels, got %v", err)
	}
}

func TestSetShaderReplacesProgram(t *testing.T) {
	g := gputest.New()
	m, _ := New(g, testFS(t), "m.vert", "m.frag")
	old := m.Shader().ID()
	if err := m.SetShader("alt.vert", "alt.frag"); err != nil {
		t.Fatalf("SetShader: %v", err)
	}
	if m.Shader().ID() == old || m.Shader().ID() == 0 {
		t.Errorf("SetShader: expected a new program")
	}
	if _, ok := g.Programs[old]; ok {
		t.Errorf("SetShader: old program %d not deleted", old)
	}
}

const plainFrag = `#version 410 core
out vec4 result;
void main() { result = vec4(1.0); }
`

func TestMaterialKeepsShaderAndTextureSources(t *testing.T) {
	logs := observeLogs(t)
	g := gputest.New()
	shaders := fstest.MapFS{
		"m.vert":   {Data: []byte(testVert)},
		"m.frag":   {Data: []byte(plainFrag)},
		"alt.vert": {Data: []byte(testVert)},
		"alt.frag": {Data: []byte(testFrag)},
	}
	images := testFS(t)
	delete(images, "alt.vert")
	delete(images, "alt.frag")

	shader, err := NewShader(g, shaders, "m.vert", "m.frag")
	if err != nil {
		t.Fatal(err)
	}
	m := NewWithShader(g, images, shader)
	if n := logs.FilterMessage("Uniform not found").Len(); n != 0 {
		t.Errorf("NewWithShader: expected no warning for a shader without Color, got %d", n)
	}

	if err := m.LoadTexture(0, "albedo.png", textures.DefaultFilter); err != nil {
		t.Errorf("LoadTexture: expected texture from the image source, got %v", err)
	}
	if err := m.SetShader("alt.vert", "alt.frag"); err != nil {
		t.Errorf("SetShader: expected sources from the shader file system, got %v", err)
	}
}
