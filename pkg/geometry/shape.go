package geometry

import (
	"github.com/solas-render/solas/pkg/core"
)

// ShapeHit is a raw ray-shape intersection before mesh information is
// attached
type ShapeHit struct {
	T      float64
	Point  core.Vec3
	Normal core.Vec3
	UV     *core.Vec2
}

// Shape is geometry that can be intersected and sampled by area
type Shape interface {
	// Intersect tests the ray against the shape within [ray.TNear, ray.TFar]
	Intersect(ray core.Ray) (ShapeHit, bool)

	// BoundingBox returns the axis-aligned bounds of the shape
	BoundingBox() AABB

	// Area returns the total surface area
	Area() float64

	// SamplePosition returns a uniformly distributed point and its normal
	SamplePosition(u core.Vec2) (core.Vec3, core.Vec3)
}
