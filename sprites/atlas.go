package sprites

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"deferred-engine/gpu"
	"deferred-engine/textures"
)

// DefaultAtlasCell is the pixel size of one atlas cell.
const DefaultAtlasCell = 16

// GenerateAtlas renders every printable ASCII glyph in white on a transparent
// background, laid out in the 10x10 grid Text expects. cell is the size of
// one grid cell in pixels and is raised to fit the 7x13 face if needed.
func GenerateAtlas(cell int) *image.RGBA {
	face := basicfont.Face7x13
	if cell < face.Height {
		cell = face.Height
	}
	img := image.NewRGBA(image.Rect(0, 0, cell*AtlasGrid, cell*AtlasGrid))

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for r := rune(FirstGlyph); r <= LastGlyph; r++ {
		i, _ := GlyphCell(r)
		col, row := i%AtlasGrid, i/AtlasGrid
		x := col*cell + (cell-face.Advance)/2
		y := row*cell + (cell-face.Height)/2 + face.Ascent
		d.Dot = fixed.P(x, y)
		d.DrawString(string(r))
	}
	return img
}

// LoadAtlas generates the glyph atlas and uploads it with nearest filtering.
func LoadAtlas(g gpu.GL, cell int) (uint32, error) {
	px := textures.FromImage(GenerateAtlas(cell))
	return textures.FromData(g, px.Data, px.Width, px.Height, px.Channels,
		textures.Filter{Min: gpu.Nearest, Mag: gpu.Nearest})
}
