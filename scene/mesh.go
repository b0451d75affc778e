package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

// SubMesh is one triangle list sharing a single material.
type SubMesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	// MaterialIndex points into Scene.Materials; -1 when the source had none.
	MaterialIndex int
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *SubMesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	return min, max
}

func vtx(x, y, z, u, v, nx, ny, nz float32) core.Vertex {
	return core.Vertex{
		Position: mgl32.Vec3{x, y, z},
		UV:       mgl32.Vec2{u, v},
		Normal:   mgl32.Vec3{nx, ny, nz},
		Color:    core.White,
	}
}

// CreateQuad returns a unit quad in the XY plane facing +Z, built from two
// counter-clockwise triangles over four corners.
func CreateQuad() SubMesh {
	return SubMesh{
		Name: "Quad",
		Vertices: []core.Vertex{
			vtx(0.5, 0.5, 0, 1, 1, 0, 0, 1),
			vtx(-0.5, 0.5, 0, 0, 1, 0, 0, 1),
			vtx(-0.5, -0.5, 0, 0, 0, 0, 0, 1),
			vtx(0.5, -0.5, 0, 1, 0, 0, 0, 1),
		},
		Indices:       []uint32{0, 1, 3, 1, 2, 3},
		MaterialIndex: -1,
	}
}

// CreateCube returns an axis-aligned cube with per-face normals.
func CreateCube(size float32) SubMesh {
	h := size / 2
	faces := []struct {
		n, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	m := SubMesh{Name: "Cube", MaterialIndex: -1}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		c := f.n.Mul(h)
		corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, k := range corners {
			p := c.Add(f.u.Mul(k[0] * h)).Add(f.v.Mul(k[1] * h))
			m.Vertices = append(m.Vertices, core.Vertex{
				Position: p,
				UV:       mgl32.Vec2{(k[0] + 1) / 2, (k[1] + 1) / 2},
				Normal:   f.n,
				Color:    core.White,
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
