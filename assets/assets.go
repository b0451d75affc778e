// Package assets embeds the engine's default GLSL programs.
package assets

import "embed"

// Shaders holds the default programs under "shaders/".
//
//go:embed shaders/*.vert shaders/*.frag
var Shaders embed.FS

// Program paths inside Shaders.
const (
	GeometryVert = "shaders/geometry.vert"
	GeometryFrag = "shaders/geometry.frag"
	SpriteVert   = "shaders/sprite.vert"
	SpriteFrag   = "shaders/sprite.frag"
	LightingFrag = "shaders/lighting.frag"
)
