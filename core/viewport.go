package core

import "deferred-engine/gpu"

// Viewport is the live drawable area of the default framebuffer.
//
// The window updates it on resize; cameras, sprites and text read it when
// they need the current dimensions. A zero height is valid and means the
// window is minimised.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Aspect returns width/height, or false when the height is zero.
func (v *Viewport) Aspect() (float32, bool) {
	if v == nil || v.Height == 0 {
		return 0, false
	}
	return float32(v.Width) / float32(v.Height), true
}

// Apply restores the default-framebuffer viewport after an off-screen pass.
func (v *Viewport) Apply(g gpu.GL) {
	g.Viewport(int32(v.X), int32(v.Y), int32(v.Width), int32(v.Height))
}

// Letterbox fits a box of the given aspect ratio inside a width x height
// framebuffer, centred, with bars on the short axis. aspect <= 0 disables
// letterboxing and returns the full area.
func Letterbox(width, height int, aspect float32) Viewport {
	if aspect <= 0 || width <= 0 || height <= 0 {
		return Viewport{Width: width, Height: height}
	}
	w, h := width, int(float32(width)/aspect+0.5)
	if h > height {
		w, h = int(float32(height)*aspect+0.5), height
	}
	return Viewport{
		X:      (width - w) / 2,
		Y:      (height - h) / 2,
		Width:  w,
		Height: h,
	}
}
