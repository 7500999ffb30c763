package scene

import (
	"math"

	"github.com/solas-render/solas/pkg/core"
)

// Camera is a pinhole perspective camera. Generate maps continuous pixel
// coordinates (x ∈ [0,w], y ∈ [0,h]) to primary rays.
type Camera struct {
	pos    core.Vec3
	right  core.Vec3
	up     core.Vec3
	fwd    core.Vec3
	width  int
	height int
	scaleY float64 // tan(fov/2)
	scaleX float64 // tan(fov/2) · aspect
}

// NewCamera creates a camera at pos looking at target with the given
// vertical field of view in degrees
func NewCamera(pos, target, up core.Vec3, fovDegrees float64, width, height int) *Camera {
	fwd := target.Subtract(pos).Normalize()
	right := fwd.Cross(up).Normalize()
	trueUp := right.Cross(fwd)

	scaleY := math.Tan(fovDegrees * math.Pi / 360.0)
	aspect := float64(width) / float64(height)

	return &Camera{
		pos:    pos,
		right:  right,
		up:     trueUp,
		fwd:    fwd,
		width:  width,
		height: height,
		scaleY: scaleY,
		scaleX: scaleY * aspect,
	}
}

// Generate creates the primary ray through the given continuous pixel position
func (c *Camera) Generate(pix core.Vec2) core.Ray {
	// Pixel to [-1,1] screen space, y pointing down in image space
	sx := (2.0*pix.X/float64(c.width) - 1.0) * c.scaleX
	sy := (1.0 - 2.0*pix.Y/float64(c.height)) * c.scaleY

	dir := c.fwd.
		Add(c.right.Multiply(sx)).
		Add(c.up.Multiply(sy)).
		Normalize()
	return core.NewRay(c.pos, dir)
}

// Size returns the image dimensions in pixels
func (c *Camera) Size() (int, int) {
	return c.width, c.height
}

// Position returns the camera position
func (c *Camera) Position() core.Vec3 {
	return c.pos
}
