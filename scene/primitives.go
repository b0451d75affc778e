package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

// CreateSphere generates a UV sphere.
func CreateSphere(radius float32, segments, rings int) SubMesh {
	segments = max(segments, 3)
	rings = max(rings, 2)
	m := SubMesh{Name: "Sphere", MaterialIndex: -1}

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * math.Pi / float64(rings)
		sinPhi, cosPhi := float32(math.Sin(phi)), float32(math.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2 * math.Pi / float64(segments)
			sinTheta, cosTheta := float32(math.Sin(theta)), float32(math.Cos(theta))

			normal := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			m.Vertices = append(m.Vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       mgl32.Vec2{float32(seg) / float32(segments), 1 - float32(ring)/float32(rings)},
				Color:    core.White,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			m.Indices = append(m.Indices, current, current+1, next)
			m.Indices = append(m.Indices, current+1, next+1, next)
		}
	}
	return m
}

// CreatePlane generates a flat XZ plane facing +Y, split into
// subdivisions x subdivisions cells.
func CreatePlane(width, depth float32, subdivisions int) SubMesh {
	subdivisions = max(subdivisions, 1)
	m := SubMesh{Name: "Plane", MaterialIndex: -1}
	halfW, halfD := width/2, depth/2

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			m.Vertices = append(m.Vertices, core.Vertex{
				Position: mgl32.Vec3{-halfW + u*width, 0, -halfD + v*depth},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{u * width, v * depth},
				Color:    core.White,
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1
			m.Indices = append(m.Indices, topLeft, bottomLeft, topRight)
			m.Indices = append(m.Indices, topRight, bottomLeft, bottomRight)
		}
	}
	return m
}

// PrimitiveScene wraps generated submeshes in a Scene with one default
// material per submesh, so they load through the same path as model files.
func PrimitiveScene(name string, meshes ...SubMesh) *Scene {
	s := &Scene{Path: name}
	for i, m := range meshes {
		m.MaterialIndex = i
		s.Meshes = append(s.Meshes, m)
		s.Materials = append(s.Materials, DefaultMaterialData(m.Name))
	}
	return s
}
