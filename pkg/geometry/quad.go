package geometry

import (
	"math"

	"github.com/solas-render/solas/pkg/core"
)

// Quad represents a rectangular surface defined by a corner and two edge vectors
type Quad struct {
	Corner core.Vec3 // One corner of the quad
	U      core.Vec3 // First edge vector
	V      core.Vec3 // Second edge vector
	Normal core.Vec3 // Normal vector (computed from U × V)
	d      float64   // Plane equation constant: normal · corner
	w      core.Vec3 // Cached cross product for barycentric coordinates
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner: corner,
		U:      u,
		V:      v,
		Normal: normal,
		d:      normal.Dot(corner),
		w:      normal.Multiply(1.0 / normal.Dot(cross)),
	}
}

// Intersect tests if a ray intersects the quad
func (q *Quad) Intersect(ray core.Ray) (ShapeHit, bool) {
	denominator := ray.Direction.Dot(q.Normal)

	// Ray parallel to the quad plane
	if math.Abs(denominator) < 1e-8 {
		return ShapeHit{}, false
	}

	t := (q.d - ray.Origin.Dot(q.Normal)) / denominator
	if t < ray.TNear || t > ray.TFar {
		return ShapeHit{}, false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)

	// Barycentric coordinates within the quad
	alpha := q.w.Dot(hitVector.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return ShapeHit{}, false
	}

	uv := core.NewVec2(alpha, beta)
	return ShapeHit{
		T:      t,
		Point:  hitPoint,
		Normal: q.Normal,
		UV:     &uv,
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this quad
func (q *Quad) BoundingBox() AABB {
	corners := []core.Vec3{
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	}
	// Pad so axis-aligned quads keep a non-degenerate box
	box := NewAABBFromPoints(corners...)
	const epsilon = 1e-3
	pad := core.NewVec3(epsilon, epsilon, epsilon)
	return NewAABB(box.Min.Subtract(pad), box.Max.Add(pad))
}

// Area returns the quad surface area |U × V|
func (q *Quad) Area() float64 {
	return q.U.Cross(q.V).Length()
}

// SamplePosition returns a uniformly distributed point on the quad
func (q *Quad) SamplePosition(u core.Vec2) (core.Vec3, core.Vec3) {
	p := q.Corner.Add(q.U.Multiply(u.X)).Add(q.V.Multiply(u.Y))
	return p, q.Normal
}
