package geometry

import (
	"math"

	"github.com/solas-render/solas/pkg/core"
)

// Sphere represents a sphere defined by center and radius
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// Intersect tests if a ray intersects the sphere
func (s *Sphere) Intersect(ray core.Ray) (ShapeHit, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return ShapeHit{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Nearest root within the valid range
	root := (-halfB - sqrtD) / a
	if root < ray.TNear || root > ray.TFar {
		root = (-halfB + sqrtD) / a
		if root < ray.TNear || root > ray.TFar {
			return ShapeHit{}, false
		}
	}

	point := ray.At(root)
	normal := point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	return ShapeHit{
		T:      root,
		Point:  point,
		Normal: normal,
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

// Area returns the sphere surface area
func (s *Sphere) Area() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius
}

// SamplePosition returns a uniformly distributed point on the sphere surface
func (s *Sphere) SamplePosition(u core.Vec2) (core.Vec3, core.Vec3) {
	n := core.UniformSampleSphere(u)
	return s.Center.Add(n.Multiply(s.Radius)), n
}
