package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/core"
	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/materials"
	"deferred-engine/scene"
)

// MeshData is one uploaded submesh: its vertex array, buffers and the index
// of its MaterialData in the owning Mesh.
type MeshData struct {
	Name          string
	VAO           uint32
	VBO           uint32
	EBO           uint32
	IndexCount    int32
	MaterialIndex int
	Bounds        scene.AABB // object space
}

// Mesh owns the GPU buffers of every submesh of a model together with the
// material and light descriptions imported alongside them.
type Mesh struct {
	Path      string
	Meshes    []MeshData
	Materials []scene.MaterialData
	Lights    []scene.LightData

	// Embedded holds image bytes referenced by "*N" texture paths.
	Embedded [][]byte

	gl gpu.GL
}

// UploadSubMesh interleaves the vertices into the fixed 11-float layout and
// uploads them with the indices into a new vertex array.
func UploadSubMesh(g gpu.GL, sm scene.SubMesh) MeshData {
	md := MeshData{
		Name:          sm.Name,
		IndexCount:    int32(len(sm.Indices)),
		MaterialIndex: sm.MaterialIndex,
		Bounds:        sm.BoundingBox(),
	}

	md.VAO = g.GenVertexArray()
	g.BindVertexArray(md.VAO)

	md.VBO = g.GenBuffer()
	g.BindBuffer(gpu.ArrayBuffer, md.VBO)
	g.BufferFloats(gpu.ArrayBuffer, core.Interleave(sm.Vertices), gpu.StaticDraw)

	md.EBO = g.GenBuffer()
	g.BindBuffer(gpu.ElementArrayBuffer, md.EBO)
	g.BufferIndices(gpu.ElementArrayBuffer, sm.Indices, gpu.StaticDraw)

	g.EnableVertexAttribArray(core.AttribPosition)
	g.VertexAttribPointer(core.AttribPosition, 3, core.VertexStride, core.OffsetPosition*4)
	g.EnableVertexAttribArray(core.AttribUV)
	g.VertexAttribPointer(core.AttribUV, 2, core.VertexStride, core.OffsetUV*4)
	g.EnableVertexAttribArray(core.AttribNormal)
	g.VertexAttribPointer(core.AttribNormal, 3, core.VertexStride, core.OffsetNormal*4)
	g.EnableVertexAttribArray(core.AttribColor)
	g.VertexAttribPointer(core.AttribColor, 3, core.VertexStride, core.OffsetColor*4)

	g.BindVertexArray(0)
	return md
}

// NewMesh uploads every submesh of an imported scene.
func NewMesh(g gpu.GL, s *scene.Scene) *Mesh {
	m := &Mesh{gl: g}
	if s == nil {
		return m
	}
	m.Path = s.Path
	m.Materials = append(m.Materials, s.Materials...)
	m.Lights = append(m.Lights, s.Lights...)
	m.Embedded = s.Embedded
	for _, sm := range s.Meshes {
		if len(sm.Vertices) == 0 || len(sm.Indices) == 0 {
			continue
		}
		m.Meshes = append(m.Meshes, UploadSubMesh(g, sm))
	}
	return m
}

// LoadMesh imports path and uploads it. Import failures are logged by the
// importer and yield an empty Mesh along with the error; callers may keep
// drawing it.
func LoadMesh(g gpu.GL, path string) (*Mesh, error) {
	s, err := scene.Import(path)
	return NewMesh(g, s), err
}

// LoadMeshCached is LoadMesh through the on-disk import cache in cacheDir.
func LoadMeshCached(g gpu.GL, path, cacheDir string) (*Mesh, error) {
	s, err := scene.ImportCached(path, cacheDir)
	return NewMesh(g, s), err
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool { return m == nil || len(m.Meshes) == 0 }

// EmbeddedTexture resolves a "*N" texture path against the model file.
func (m *Mesh) EmbeddedTexture(path string) ([]byte, bool) {
	s := scene.Scene{Embedded: m.Embedded}
	return s.EmbeddedTexture(path)
}

// Unload releases every vertex array and buffer and clears the mesh.
func (m *Mesh) Unload() {
	if m == nil {
		return
	}
	for _, md := range m.Meshes {
		m.gl.DeleteVertexArray(md.VAO)
		m.gl.DeleteBuffer(md.VBO)
		m.gl.DeleteBuffer(md.EBO)
	}
	logger.Log.Debug("Mesh unloaded", zap.String("path", m.Path), zap.Int("submeshes", len(m.Meshes)))
	m.Meshes = nil
	m.Materials = nil
	m.Lights = nil
	m.Embedded = nil
}

// ModelInstance places a Mesh in the world with one material per submesh.
// The instance owns its Mesh; the materials belong to the caller.
type ModelInstance struct {
	Mesh      *Mesh
	Materials []*materials.Material
	Transform mgl32.Mat4
}

// NewModelInstance places mesh at the identity transform.
func NewModelInstance(mesh *Mesh, mats ...*materials.Material) *ModelInstance {
	return &ModelInstance{Mesh: mesh, Materials: mats, Transform: mgl32.Ident4()}
}

// MaterialFor returns the material assigned to submesh i. Once the list runs
// out the last material is reused; nil when there are none.
func (mi *ModelInstance) MaterialFor(i int) *materials.Material {
	return materialFor(mi.Materials, i)
}

func materialFor(mats []*materials.Material, i int) *materials.Material {
	if len(mats) == 0 {
		return nil
	}
	if i >= len(mats) {
		return mats[len(mats)-1]
	}
	return mats[i]
}

// Unload releases the instance's mesh. Its materials are left alone and must
// be destroyed by whoever created them.
func (mi *ModelInstance) Unload() {
	if mi.Mesh != nil {
		mi.Mesh.Unload()
	}
	mi.Materials = nil
}
