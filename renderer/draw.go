package renderer

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/materials"
	"deferred-engine/scene"
)

// Stats counts the work issued since the last ResetStats.
type Stats struct {
	DrawCalls int
	Triangles int
	Skipped   int
	Culled    int
}

// Renderer issues model draw calls through one graphics context.
type Renderer struct {
	gl    gpu.GL
	stats Stats
}

func New(g gpu.GL) *Renderer {
	return &Renderer{gl: g}
}

func (r *Renderer) GL() gpu.GL { return r.gl }

func (r *Renderer) Stats() Stats { return r.stats }

func (r *Renderer) ResetStats() { r.stats = Stats{} }

// DrawModel binds material, uploads Model, View and Projection and draws the
// submesh. A nil material or camera logs a warning and draws nothing.
func (r *Renderer) DrawModel(mesh *MeshData, material *materials.Material, model mgl32.Mat4, camera *scene.Camera) {
	switch {
	case mesh == nil:
		logger.Log.Warn("DrawModel without mesh")
		r.stats.Skipped++
		return
	case material == nil:
		logger.Log.Warn("DrawModel without material")
		r.stats.Skipped++
		return
	case camera == nil:
		logger.Log.Warn("DrawModel without camera")
		r.stats.Skipped++
		return
	}

	material.Bind()
	shader := material.Shader()
	shader.SetMat4("Model", model)
	shader.SetMat4("View", camera.GetViewMatrix())
	shader.SetMat4("Projection", camera.GetProjectionMatrix())

	r.gl.BindVertexArray(mesh.VAO)
	r.gl.DrawElements(gpu.Triangles, mesh.IndexCount)
	r.gl.BindVertexArray(0)

	r.stats.DrawCalls++
	r.stats.Triangles += int(mesh.IndexCount) / 3
}

// drawItem is one submesh paired with the material and transform it is
// drawn with.
type drawItem struct {
	mesh      *MeshData
	material  *materials.Material
	model     mgl32.Mat4
	sortOrder int
	distance  float32
}

func newDrawItem(mesh *MeshData, material *materials.Material, model mgl32.Mat4) drawItem {
	item := drawItem{mesh: mesh, material: material, model: model}
	if material != nil {
		item.sortOrder = material.SortOrder()
	}
	return item
}

// DrawMesh draws every submesh of mesh. Submesh i uses mats[i], or the last
// material once the list runs out. Draws are stable-sorted by ascending
// material sort order.
func (r *Renderer) DrawMesh(mesh *Mesh, mats []*materials.Material, model mgl32.Mat4, camera *scene.Camera) {
	if mesh.Empty() {
		return
	}
	items := make([]drawItem, 0, len(mesh.Meshes))
	for i := range mesh.Meshes {
		items = append(items, newDrawItem(&mesh.Meshes[i], materialFor(mats, i), model))
	}
	slices.SortStableFunc(items, func(a, b drawItem) int {
		return cmp.Compare(a.sortOrder, b.sortOrder)
	})
	for _, it := range items {
		r.DrawModel(it.mesh, it.material, it.model, camera)
	}
}

// DrawModelInstances pools the submeshes of every instance and draws them
// ordered by ascending material sort order, then by descending distance from
// the camera to the instance origin. Input order only breaks exact ties.
// Submeshes whose bounds fall outside the camera frustum are not drawn.
func (r *Renderer) DrawModelInstances(instances []*ModelInstance, camera *scene.Camera) {
	if camera == nil {
		logger.Log.Warn("DrawModelInstances without camera")
		for _, inst := range instances {
			if inst != nil && !inst.Mesh.Empty() {
				r.stats.Skipped += len(inst.Mesh.Meshes)
			}
		}
		return
	}
	eye := camera.Eye()
	frustum, cull := camera.Frustum()

	var items []drawItem
	for _, inst := range instances {
		if inst == nil || inst.Mesh.Empty() {
			continue
		}
		distance := inst.Transform.Col(3).Vec3().Sub(eye).Len()
		for i := range inst.Mesh.Meshes {
			if cull && !inst.Mesh.Meshes[i].Bounds.Transform(inst.Transform).IntersectsFrustum(&frustum) {
				r.stats.Culled++
				continue
			}
			item := newDrawItem(&inst.Mesh.Meshes[i], inst.MaterialFor(i), inst.Transform)
			item.distance = distance
			items = append(items, item)
		}
	}

	slices.SortStableFunc(items, func(a, b drawItem) int {
		if c := cmp.Compare(a.sortOrder, b.sortOrder); c != 0 {
			return c
		}
		return cmp.Compare(b.distance, a.distance)
	})
	for _, it := range items {
		r.DrawModel(it.mesh, it.material, it.model, camera)
	}
}
