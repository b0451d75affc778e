package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"

	"go.uber.org/zap"

	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/materials"
	"deferred-engine/scene"
	"deferred-engine/textures"
)

// Texture units used by the geometry pass program.
const (
	UnitAlbedo = iota
	UnitMetallicRoughness
	UnitEmissive
)

// geometryMaps pairs each geometry texture unit with the imported texture
// type feeding it, its sampler and the flag telling the shader it is set.
var geometryMaps = []struct {
	unit    int
	typ     scene.TextureType
	sampler string
	flag    string
}{
	{UnitAlbedo, scene.TextureDiffuse, "AlbedoMap", "HasAlbedoMap"},
	{UnitMetallicRoughness, scene.TextureMetallicRoughness, "MetallicRoughnessMap", "HasMetallicRoughnessMap"},
	{UnitEmissive, scene.TextureEmissive, "EmissiveMap", "HasEmissiveMap"},
}

// SortTransparent is the sort order given to blended materials so they draw
// after opaque ones.
const SortTransparent = 100

// NewMaterials builds one runtime Material per MaterialData of mesh, each
// with its own geometry program read from shaderFS. Texture paths resolve
// against textureFS, except "*N" paths which come from the model file.
// Missing textures are reported in the joined error; every material is still
// returned. A mesh without material descriptions gets one default material.
func NewMaterials(g gpu.GL, shaderFS fs.FS, vertPath, fragPath string, textureFS fs.FS, mesh *Mesh) ([]*materials.Material, error) {
	descs := mesh.Materials
	if len(descs) == 0 {
		descs = []scene.MaterialData{scene.DefaultMaterialData("default")}
	}

	var errs []error
	out := make([]*materials.Material, 0, len(descs))
	for _, md := range descs {
		shader, err := materials.NewShader(g, shaderFS, vertPath, fragPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("material %q: %w", md.Name, err))
		}
		m := materials.NewWithShader(g, textureFS, shader)
		m.Name = md.Name
		errs = append(errs, applyMaterialData(m, md, mesh))
		out = append(out, m)
	}
	return out, errors.Join(errs...)
}

// OrderByMesh lines materials up with the submeshes of mesh using each
// submesh's MaterialIndex, so the result can be handed to DrawMesh or a
// ModelInstance. Submeshes without a valid index get fallback.
func OrderByMesh(mesh *Mesh, mats []*materials.Material, fallback *materials.Material) []*materials.Material {
	out := make([]*materials.Material, len(mesh.Meshes))
	for i, md := range mesh.Meshes {
		out[i] = fallback
		if md.MaterialIndex >= 0 && md.MaterialIndex < len(mats) {
			out[i] = mats[md.MaterialIndex]
		}
	}
	return out
}

func applyMaterialData(m *materials.Material, md scene.MaterialData, mesh *Mesh) error {
	shader := m.Shader()
	albedo := md.Diffuse.Vec4()
	albedo[3] = md.Opacity
	shader.SetVec4("Color", albedo)
	shader.SetVec3("Emissive", md.Emissive.Vec3())
	shader.SetFloat("Metallic", metallicFromSpecular(md.Specular.R))
	shader.SetFloat("Roughness", roughnessFromShininess(md.Shininess))

	if md.Transparent() {
		m.SetBlendingMode(materials.BlendAlpha)
		m.SetDepthSortingMode(materials.DepthRead)
		m.SetSortOrder(SortTransparent)
	}

	var errs []error
	for _, gm := range geometryMaps {
		path := md.Texture(gm.typ)
		if path == "" {
			shader.SetBool(gm.flag, false)
			continue
		}
		err := loadMaterialTexture(m, gm.unit, path, mesh)
		if err != nil {
			errs = append(errs, fmt.Errorf("material %q %s: %w", md.Name, gm.typ, err))
		}
		shader.SetInt(gm.sampler, int32(gm.unit))
		shader.SetBool(gm.flag, err == nil)
	}
	return errors.Join(errs...)
}

func loadMaterialTexture(m *materials.Material, unit int, path string, mesh *Mesh) error {
	data, embedded := mesh.EmbeddedTexture(path)
	if !embedded {
		return m.LoadTexture(unit, path, textures.DefaultFilter)
	}
	px, err := textures.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Log.Error("Embedded texture decode failed",
			zap.String("material", m.Name),
			zap.String("texture", path),
			zap.Error(err))
		return err
	}
	return m.LoadTextureFromData(unit, px.Data, px.Width, px.Height, px.Channels, textures.DefaultFilter)
}

// roughnessFromShininess inverts the Blinn-Phong exponent used by the
// importers: shininess = (1-roughness)^2 * 128 + 1.
func roughnessFromShininess(shininess float32) float32 {
	s := math.Max(0, float64(shininess-1)/128)
	return float32(math.Max(0, math.Min(1, 1-math.Sqrt(s))))
}

// metallicFromSpecular inverts specular = 0.04 + metallic*0.66.
func metallicFromSpecular(specular float32) float32 {
	return float32(math.Max(0, math.Min(1, float64(specular-0.04)/0.66)))
}
