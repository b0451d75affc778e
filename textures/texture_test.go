package textures

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"deferred-engine/gpu"
	"deferred-engine/gpu/gputest"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeFlipsRows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255}) // top
	img.Set(0, 1, color.NRGBA{0, 0, 255, 128}) // bottom, translucent

	px, err := Decode(bytes.NewReader(encodePNG(t, img)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if px.Channels != 4 {
		t.Fatalf("Decode: expected 4 channels, got %d", px.Channels)
	}
	bottom := px.Data[:4]
	if bottom[2] != 255 || bottom[3] != 128 {
		t.Errorf("Decode: first row should be the image bottom, got %v", bottom)
	}
}

func TestDecodeOpaqueIsRGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{10, 20, 30, 255})
		}
	}
	px := FromImage(img)
	if px.Channels != 3 || len(px.Data) != 12 {
		t.Errorf("FromImage: expected 3 channels / 12 bytes, got %d / %d", px.Channels, len(px.Data))
	}
}

func TestLoadUploadsTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	fsys := fstest.MapFS{"tex/a.png": {Data: encodePNG(t, img)}}
	g := gputest.New()

	id, err := Load(g, fsys, "tex/a.png", DefaultFilter)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tex := g.Textures[id]
	if tex == nil || tex.Width != 4 || tex.Height != 2 {
		t.Fatalf("Load: expected 4x2 texture, got %+v", tex)
	}
	if !tex.Mipmapped {
		t.Errorf("Load: mipmaps not generated")
	}
	if tex.Params[gpu.TextureMinFilter] != gpu.LinearMipmapLinear || tex.Params[gpu.TextureWrapS] != gpu.Repeat {
		t.Errorf("Load: unexpected params %v", tex.Params)
	}
}

func TestLoadMissingKeepsHandle(t *testing.T) {
	g := gputest.New()
	id, err := Load(g, fstest.MapFS{}, "nope.png", DefaultFilter)
	if err == nil {
		t.Fatalf("Load: expected error for missing file")
	}
	if id == 0 || !g.TextureAlive(id) {
		t.Errorf("Load: expected an allocated handle on failure, got %d", id)
	}
	if g.Textures[id].Uploads != 0 {
		t.Errorf("Load: missing file must not upload storage")
	}
}

func TestFromDataRejectsBadInput(t *testing.T) {
	g := gputest.New()
	if id, err := FromData(g, make([]byte, 8), 2, 2, 2, DefaultFilter); id != 0 || !errors.Is(err, ErrUnsupportedChannels) {
		t.Errorf("FromData: 2 channels should fail with ErrUnsupportedChannels, got %d %v", id, err)
	}
	if id, err := FromData(g, make([]byte, 5), 2, 2, 3, DefaultFilter); id != 0 || !errors.Is(err, ErrInvalidData) {
		t.Errorf("FromData: short buffer should fail with ErrInvalidData, got %d %v", id, err)
	}
	if len(g.Textures) != 0 {
		t.Errorf("FromData: rejected input allocated %d textures", len(g.Textures))
	}

	id, err := FromData(g, make([]byte, 12), 2, 2, 3, DefaultFilter)
	if err != nil || id == 0 {
		t.Fatalf("FromData: %v", err)
	}
	if f := g.Textures[id].InternalFormat; f != int32(gpu.RGB) {
		t.Errorf("FromData: expected RGB storage, got 0x%X", f)
	}
}

func TestSolid(t *testing.T) {
	g := gputest.New()
	id := Solid(g, 255, 255, 255, 255)
	if tex := g.Textures[id]; tex == nil || tex.Width != 1 || tex.Height != 1 {
		t.Errorf("Solid: expected a 1x1 texture, got %+v", tex)
	}
}
