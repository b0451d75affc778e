package scene

import "deferred-engine/core"

// TextureType classifies a texture path in a MaterialData.
type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
	TextureAmbient
	TextureEmissive
	TextureHeight
	TextureNormal
	TextureShininess
	TextureOpacity
	TextureDisplacement
	TextureMetallicRoughness
	TextureOcclusion
)

var textureTypeNames = [...]string{
	"diffuse", "specular", "ambient", "emissive", "height", "normal",
	"shininess", "opacity", "displacement", "metallic_roughness", "occlusion",
}

func (t TextureType) String() string {
	if t >= 0 && int(t) < len(textureTypeNames) {
		return textureTypeNames[t]
	}
	return "unknown"
}

// MaterialData describes a material as the source file declared it. It is
// consumed to build runtime materials and is never bound directly.
type MaterialData struct {
	Name      string
	Diffuse   core.Color
	Ambient   core.Color
	Specular  core.Color
	Emissive  core.Color
	Shininess float32
	Opacity   float32 // 1 = opaque

	// Textures lists paths per type, relative to the model file.
	Textures map[TextureType][]string
}

// DefaultMaterialData is a white, opaque, untextured material.
func DefaultMaterialData(name string) MaterialData {
	return MaterialData{
		Name:      name,
		Diffuse:   core.ColorWhite,
		Ambient:   core.ColorBlack,
		Specular:  core.ColorBlack,
		Emissive:  core.ColorBlack,
		Shininess: 1,
		Opacity:   1,
		Textures:  map[TextureType][]string{},
	}
}

// AddTexture appends path to the list for typ.
func (m *MaterialData) AddTexture(typ TextureType, path string) {
	if m.Textures == nil {
		m.Textures = map[TextureType][]string{}
	}
	m.Textures[typ] = append(m.Textures[typ], path)
}

// Texture returns the first path of typ, or "".
func (m *MaterialData) Texture(typ TextureType) string {
	if paths := m.Textures[typ]; len(paths) > 0 {
		return paths[0]
	}
	return ""
}

// Transparent reports whether the material should be blended.
func (m *MaterialData) Transparent() bool {
	return m.Opacity < 1 || len(m.Textures[TextureOpacity]) > 0
}
