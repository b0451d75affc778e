package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

func box(center mgl32.Vec3, half float32) AABB {
	h := mgl32.Vec3{half, half, half}
	return AABB{Min: center.Sub(h), Max: center.Add(h)}
}

func TestFrustumIntersections(t *testing.T) {
	cam := NewCamera(&core.Viewport{Width: 800, Height: 600})
	f, ok := cam.Frustum()
	if !ok {
		t.Fatal("Frustum: expected a frustum for a sized viewport")
	}

	cases := []struct {
		name   string
		box    AABB
		inside bool
	}{
		{"ahead", box(mgl32.Vec3{0, 0, -5}, 0.5), true},
		{"behind", box(mgl32.Vec3{0, 0, 5}, 0.5), false},
		{"past far plane", box(mgl32.Vec3{0, 0, -200}, 1), false},
		{"far left", box(mgl32.Vec3{-50, 0, -5}, 1), false},
		{"straddling left edge", box(mgl32.Vec3{-2.5, 0, -5}, 1), true},
		{"surrounding camera", box(mgl32.Vec3{}, 10), true},
	}
	for _, c := range cases {
		if got := c.box.IntersectsFrustum(&f); got != c.inside {
			t.Errorf("%s: expected %v, got %v", c.name, c.inside, got)
		}
	}
}

func TestFrustumNeedsViewport(t *testing.T) {
	if _, ok := NewCamera(nil).Frustum(); ok {
		t.Errorf("Frustum: expected none without a viewport")
	}
	if _, ok := NewCamera(&core.Viewport{Width: 10}).Frustum(); ok {
		t.Errorf("Frustum: expected none at zero height")
	}
}

func TestAABBTransform(t *testing.T) {
	b := box(mgl32.Vec3{}, 1).Transform(mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 1, 1)))
	if !b.Min.ApproxEqual(mgl32.Vec3{-1, 1, 2}) || !b.Max.ApproxEqual(mgl32.Vec3{3, 3, 4}) {
		t.Errorf("Transform: expected (-1,1,2)-(3,3,4), got %v-%v", b.Min, b.Max)
	}

	// A rotated box grows to enclose its corners.
	r := box(mgl32.Vec3{}, 1).Transform(mgl32.HomogRotate3DY(mgl32.DegToRad(45)))
	if r.Max.X() < 1.41 || r.Max.Y() != 1 {
		t.Errorf("Transform: expected rotated extent ~1.414, got %v", r.Max)
	}

	quad := CreateQuad()
	if bb := quad.BoundingBox(); bb.Min.Z() != 0 || bb.Max.Z() != 0 || bb.Max.X() <= bb.Min.X() {
		t.Errorf("BoundingBox: unexpected quad bounds %v-%v", bb.Min, bb.Max)
	}
}
