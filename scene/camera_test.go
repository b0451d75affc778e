package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

func hasNaN(m mgl32.Mat4) bool {
	for _, v := range m {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return true
		}
	}
	return false
}

func TestProjectionIdentityAtZeroHeight(t *testing.T) {
	vp := &core.Viewport{Width: 800, Height: 0}
	c := NewCamera(vp)
	if p := c.GetProjectionMatrix(); p != mgl32.Ident4() || hasNaN(p) {
		t.Errorf("perspective: expected identity, got %v", p)
	}
	c.SetOrthographic(10, 0.1, 100)
	if p := c.GetProjectionMatrix(); p != mgl32.Ident4() {
		t.Errorf("orthographic: expected identity, got %v", p)
	}

	c.Viewport = nil
	if p := c.GetProjectionMatrix(); p != mgl32.Ident4() {
		t.Errorf("nil viewport: expected identity, got %v", p)
	}
}

func TestProjectionFollowsViewport(t *testing.T) {
	vp := &core.Viewport{Width: 800, Height: 400}
	c := NewCamera(vp)
	expected := mgl32.Perspective(mgl32.DegToRad(45), 2, 0.1, 100)
	if p := c.GetProjectionMatrix(); !p.ApproxEqual(expected) {
		t.Errorf("perspective: expected %v, got %v", expected, p)
	}

	vp.Width, vp.Height = 400, 400
	c.SetOrthographic(10, -1, 1)
	expected = mgl32.Ortho(-5, 5, -5, 5, -1, 1)
	if p := c.GetProjectionMatrix(); !p.ApproxEqual(expected) {
		t.Errorf("orthographic: expected %v, got %v", expected, p)
	}
	if c.Mode != Orthographic || c.OrthoSize != 10 {
		t.Errorf("SetOrthographic: mode/size not updated")
	}
}

func TestViewMatrixComposition(t *testing.T) {
	c := NewCamera(nil)
	c.Position = mgl32.Vec3{1, 2, 3}
	c.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	expected := mgl32.Translate3D(-1, -2, -3).Mul4(c.Rotation.Mat4())
	if v := c.GetViewMatrix(); !v.ApproxEqual(expected) {
		t.Errorf("GetViewMatrix: expected %v, got %v", expected, v)
	}
}

func TestLookAtAndEye(t *testing.T) {
	c := NewCamera(&core.Viewport{Width: 1, Height: 1})
	eye := mgl32.Vec3{3, 4, 5}
	c.LookAt(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	if got := c.Eye(); !got.ApproxEqualThreshold(eye, 1e-4) {
		t.Errorf("Eye: expected %v, got %v", eye, got)
	}
	expected := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	if v := c.GetViewMatrix(); !v.ApproxEqualThreshold(expected, 1e-4) {
		t.Errorf("LookAt: expected %v, got %v", expected, v)
	}
}

func TestOrbitCameraLooksAtTarget(t *testing.T) {
	target := mgl32.Vec3{1, 0, 0}
	c := NewOrbitCamera(&core.Viewport{Width: 1, Height: 1}, target, 5)
	c.Orbit(0.7, 0.2)

	// The target maps onto the view axis, Distance units in front.
	p := c.GetViewMatrix().Mul4x1(target.Vec4(1))
	if !p.Vec3().ApproxEqualThreshold(mgl32.Vec3{0, 0, -5}, 1e-4) {
		t.Errorf("Orbit: target in view space expected (0,0,-5), got %v", p)
	}
	if d := c.Eye().Sub(target).Len(); math.Abs(float64(d-5)) > 1e-4 {
		t.Errorf("Orbit: expected eye 5 units from target, got %v", d)
	}
}
