package sprites

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/core"
	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/materials"
)

// Atlas layout: printable ASCII from ' ' to '~' in a 10x10 grid, row-major
// from the top-left cell.
const (
	AtlasGrid  = 10
	FirstGlyph = ' '
	LastGlyph  = '~'
	GlyphCount = LastGlyph - FirstGlyph + 1
)

const fallbackGlyph = '?'

// glyphUVs holds the UV rectangle of every atlas cell.
var glyphUVs = func() [AtlasGrid * AtlasGrid]mgl32.Vec4 {
	var uvs [AtlasGrid * AtlasGrid]mgl32.Vec4
	cell := float32(1) / AtlasGrid
	for i := range uvs {
		row := AtlasGrid - i/AtlasGrid
		col := i % AtlasGrid
		x, y := float32(col)*cell, float32(row)*cell
		uvs[i] = mgl32.Vec4{x, y, x + cell, y - cell}
	}
	return uvs
}()

// GlyphCell returns the atlas cell of r, or false if the atlas lacks it.
func GlyphCell(r rune) (int, bool) {
	if r < FirstGlyph || r > LastGlyph {
		return 0, false
	}
	return int(r - FirstGlyph), true
}

// GlyphUV returns the UV rectangle of an atlas cell.
func GlyphUV(cell int) mgl32.Vec4 { return glyphUVs[cell] }

// Text renders strings by stamping one sprite per glyph. Scale is the glyph
// size in pixels; Spacing and LineHeight default to Scale.
type Text struct {
	Position   mgl32.Vec2
	Scale      float32
	Spacing    float32
	LineHeight float32

	stamp *Sprite
}

// NewText creates a text renderer drawing with material, whose first texture
// unit should hold a glyph atlas such as the one from GenerateAtlas.
func NewText(g gpu.GL, material *materials.Material, vp *core.Viewport, position mgl32.Vec2, scale float32) *Text {
	return &Text{
		Position:   position,
		Scale:      scale,
		Spacing:    scale,
		LineHeight: scale,
		stamp:      New(g, material, vp, position, mgl32.Vec2{scale, scale}),
	}
}

// SetScale changes the glyph size along with spacing and line height.
func (t *Text) SetScale(scale float32) {
	t.Scale, t.Spacing, t.LineHeight = scale, scale, scale
}

func (t *Text) Material() *materials.Material { return t.stamp.Material }

// Render draws s, one draw call per visible glyph. A space advances the
// cursor without drawing and a newline returns to the start column one line
// down. Glyphs missing from the atlas are drawn as '?'.
func (t *Text) Render(s string) {
	var x, y float32
	for _, r := range s {
		switch r {
		case ' ':
			x += t.Spacing
			continue
		case '\n':
			x = 0
			y += t.LineHeight
			continue
		}

		cell, ok := GlyphCell(r)
		if !ok {
			logger.Log.Warn("Glyph not in atlas", zap.String("glyph", string(r)))
			cell, _ = GlyphCell(fallbackGlyph)
		}

		t.stamp.Size = mgl32.Vec2{t.Scale, t.Scale}
		t.stamp.Position = t.Position.Add(mgl32.Vec2{x, y})
		t.stamp.SetUV(glyphUVs[cell])
		t.stamp.Render()
		x += t.Spacing
	}
}

// Destroy releases the stamp sprite. The material belongs to the caller.
func (t *Text) Destroy() {
	t.stamp.Destroy()
}
