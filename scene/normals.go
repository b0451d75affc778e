package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

// GenerateNormals writes area-weighted smooth normals into vertices. Each
// triangle contributes its unnormalised face normal, so larger faces weigh
// more. Vertices referenced by no triangle keep their current normal.
func GenerateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	used := make([]bool, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			continue
		}
		v0 := vertices[i0].Position
		v1 := vertices[i1].Position
		v2 := vertices[i2].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			accum[idx] = accum[idx].Add(n)
			used[idx] = true
		}
	}
	for i := range vertices {
		if used[i] && accum[i].Len() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// TransformVertices applies a model matrix to positions and its normal
// matrix to normals, in place.
func TransformVertices(vertices []core.Vertex, m mgl32.Mat4) {
	normal := m.Mat3().Inv().Transpose()
	for i := range vertices {
		p := vertices[i].Position
		vertices[i].Position = m.Mul4x1(p.Vec4(1)).Vec3()
		n := normal.Mul3x1(vertices[i].Normal)
		if n.Len() > 0 {
			vertices[i].Normal = n.Normalize()
		}
	}
}
