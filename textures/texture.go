// Package textures decodes images and uploads them as GPU textures.
package textures

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"deferred-engine/gpu"
)

var (
	// ErrUnsupportedChannels is returned for pixel data that is neither RGB nor RGBA.
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	// ErrInvalidData is returned for empty dimensions or short pixel buffers.
	ErrInvalidData = errors.New("invalid texture data")
)

// Filter is a min/mag filter pair applied at upload time.
type Filter struct {
	Min int32
	Mag int32
}

// DefaultFilter is trilinear minification with linear magnification.
var DefaultFilter = Filter{Min: gpu.LinearMipmapLinear, Mag: gpu.Linear}

// Pixels is decoded, bottom-up image data ready for upload.
type Pixels struct {
	Data          []byte
	Width, Height int
	Channels      int // 3 or 4
}

// Decode reads any registered image format (png, jpeg, gif, bmp, tiff, webp).
// Opaque images decode to 3 channels, everything else to 4. Rows are flipped
// so the first row is the bottom of the image, as OpenGL expects.
func Decode(r io.Reader) (*Pixels, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts an in-memory image to upload-ready pixels.
func FromImage(img image.Image) *Pixels {
	b := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	channels := 4
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		channels = 3
	}

	w, h := b.Dx(), b.Dy()
	out := make([]byte, 0, w*h*channels)
	for y := h - 1; y >= 0; y-- {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		if channels == 4 {
			out = append(out, row...)
			continue
		}
		for x := 0; x < w; x++ {
			out = append(out, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return &Pixels{Data: out, Width: w, Height: h, Channels: channels}
}

// Load decodes path from fsys and uploads it. The texture handle is allocated
// before decoding, so on a read or decode failure the returned handle is still
// valid (with no storage) alongside the error.
func Load(g gpu.GL, fsys fs.FS, path string, filter Filter) (uint32, error) {
	id := g.GenTexture()
	g.BindTexture(gpu.Texture2D, id)
	setParams(g, filter)
	g.BindTexture(gpu.Texture2D, 0)

	if fsys == nil {
		return id, fmt.Errorf("open texture %q: no file system", path)
	}
	f, err := fsys.Open(path)
	if err != nil {
		return id, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	px, err := Decode(f)
	if err != nil {
		return id, fmt.Errorf("texture %q: %w", path, err)
	}
	upload(g, id, px, filter)
	return id, nil
}

// FromData uploads raw pixels. It returns 0 when the buffer cannot describe
// a width x height image of 3 or 4 channels.
func FromData(g gpu.GL, data []byte, width, height, channels int, filter Filter) (uint32, error) {
	if channels != 3 && channels != 4 {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}
	if width <= 0 || height <= 0 || len(data) < width*height*channels {
		return 0, fmt.Errorf("%w: %dx%dx%d with %d bytes", ErrInvalidData, width, height, channels, len(data))
	}
	id := g.GenTexture()
	upload(g, id, &Pixels{Data: data, Width: width, Height: height, Channels: channels}, filter)
	return id, nil
}

// Solid creates a 1x1 RGBA texture, used as a neutral stand-in for missing maps.
func Solid(g gpu.GL, r, gr, b, a uint8) uint32 {
	id, _ := FromData(g, []byte{r, gr, b, a}, 1, 1, 4, Filter{Min: gpu.Nearest, Mag: gpu.Nearest})
	return id
}

func upload(g gpu.GL, id uint32, px *Pixels, filter Filter) {
	format := gpu.RGBA
	if px.Channels == 3 {
		format = gpu.RGB
	}
	g.BindTexture(gpu.Texture2D, id)
	setParams(g, filter)
	g.TexImage2D(gpu.Texture2D, int32(format), int32(px.Width), int32(px.Height), format, gpu.UnsignedByte, px.Data)
	g.GenerateMipmap(gpu.Texture2D)
	g.BindTexture(gpu.Texture2D, 0)
}

func setParams(g gpu.GL, filter Filter) {
	g.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, gpu.Repeat)
	g.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, gpu.Repeat)
	g.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, filter.Min)
	g.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, filter.Mag)
}
