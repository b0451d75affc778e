package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"deferred-engine/core"
)

type CameraMode int

const (
	Perspective CameraMode = iota
	Orthographic
)

const (
	DefaultFOV       = 45.0
	DefaultNear      = 0.1
	DefaultFar       = 100.0
	DefaultOrthoSize = 10.0
)

// Camera derives view and projection matrices from its own parameters and
// the live viewport it was given.
//
// The view matrix is translate(-Position) * Rotation: the world is rotated
// about the origin first and then shifted, so Position is expressed in the
// rotated frame. Eye returns the corresponding world-space position.
type Camera struct {
	Position  mgl32.Vec3
	Rotation  mgl32.Quat
	Mode      CameraMode
	FOV       float32 // degrees
	Near      float32
	Far       float32
	OrthoSize float32 // full height of the orthographic box

	// Viewport is not owned by the camera; it may be nil.
	Viewport *core.Viewport
}

func NewCamera(viewport *core.Viewport) *Camera {
	return &Camera{
		Rotation:  mgl32.QuatIdent(),
		Mode:      Perspective,
		FOV:       DefaultFOV,
		Near:      DefaultNear,
		Far:       DefaultFar,
		OrthoSize: DefaultOrthoSize,
		Viewport:  viewport,
	}
}

// SetPerspective switches to a perspective projection.
func (c *Camera) SetPerspective(fov, near, far float32) {
	c.Mode = Perspective
	c.FOV, c.Near, c.Far = fov, near, far
}

// SetOrthographic switches to an orthographic projection size units tall.
func (c *Camera) SetOrthographic(size, near, far float32) {
	c.Mode = Orthographic
	c.OrthoSize, c.Near, c.Far = size, near, far
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	p := c.Position
	return mgl32.Translate3D(-p[0], -p[1], -p[2]).Mul4(c.Rotation.Mat4())
}

// GetProjectionMatrix returns identity while the viewport height is zero
// (or there is no viewport), so a minimised window never yields NaN.
func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	aspect, ok := c.Viewport.Aspect()
	if !ok {
		return mgl32.Ident4()
	}
	if c.Mode == Orthographic {
		half := c.OrthoSize * 0.5
		return mgl32.Ortho(-half*aspect, half*aspect, -half, half, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *Camera) GetViewProjectionMatrix() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}

// Eye is the camera's position in world space, the point the view matrix
// maps to the origin.
func (c *Camera) Eye() mgl32.Vec3 {
	return c.Rotation.Inverse().Rotate(c.Position)
}

// LookAt points the camera from eye towards target.
func (c *Camera) LookAt(eye, target, up mgl32.Vec3) {
	view := mgl32.LookAtV(eye, target, up)
	view.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	c.Rotation = mgl32.Mat4ToQuat(view).Normalize()
	c.Position = c.Rotation.Rotate(eye)
}

// Translate moves the camera by delta in world space.
func (c *Camera) Translate(delta mgl32.Vec3) {
	c.Position = c.Position.Add(c.Rotation.Rotate(delta))
}

// OrbitCamera circles a target at a fixed distance.
type OrbitCamera struct {
	Camera
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // radians
	Pitch    float32 // radians
}

func NewOrbitCamera(viewport *core.Viewport, target mgl32.Vec3, distance float32) *OrbitCamera {
	c := &OrbitCamera{
		Camera:   *NewCamera(viewport),
		Target:   target,
		Distance: distance,
		Pitch:    0.3,
	}
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	if c.Pitch > 1.5 {
		c.Pitch = 1.5
	}
	if c.Pitch < -1.5 {
		c.Pitch = -1.5
	}
	pitch := mgl32.QuatRotate(c.Pitch, mgl32.Vec3{1, 0, 0})
	yaw := mgl32.QuatRotate(-c.Yaw, mgl32.Vec3{0, 1, 0})
	c.Rotation = pitch.Mul(yaw).Normalize()
	// R(x - target) - (0,0,d)
	c.Position = mgl32.Vec3{0, 0, c.Distance}.Add(c.Rotation.Rotate(c.Target))
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance += delta
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
	c.UpdatePosition()
}
