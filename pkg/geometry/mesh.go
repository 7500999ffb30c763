package geometry

import (
	"math"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/material"
)

// Mesh is a scene object: a shape with a BSDF and (possibly zero) emission.
// Emissive meshes double as area emitters.
type Mesh struct {
	Name     string
	Shape    Shape
	BSDF     material.BSDF
	Emission core.Color
}

// NewMesh creates a mesh
func NewMesh(name string, shape Shape, bsdf material.BSDF, emission core.Color) *Mesh {
	return &Mesh{Name: name, Shape: shape, BSDF: bsdf, Emission: emission}
}

// IsLight reports whether the mesh emits
func (m *Mesh) IsLight() bool {
	return !m.Emission.IsZero()
}

// Flux returns the total emitted power of a Lambertian area emitter,
// L · A · π in luminance terms. Used as the CDF weight for emitter selection.
func (m *Mesh) Flux() float64 {
	if !m.IsLight() {
		return 0
	}
	return m.Emission.Luminance() * m.Shape.Area() * math.Pi
}

// SampledPosition is a point sampled on a mesh surface
type SampledPosition struct {
	P   core.Vec3
	N   core.Vec3
	PDF core.PDF
}

// SamplePosition samples a point uniformly on the mesh surface; the pdf is
// in area measure.
func (m *Mesh) SamplePosition(u core.Vec2) SampledPosition {
	p, n := m.Shape.SamplePosition(u)
	return SampledPosition{
		P:   p,
		N:   n,
		PDF: core.AreaPDF(1.0 / m.Shape.Area()),
	}
}

// Intersection is a fully resolved ray-mesh intersection
type Intersection struct {
	// Intersection distance along the ray
	Dist float64
	// Geometric normal
	NG core.Vec3
	// Shading normal
	NS core.Vec3
	// Intersection point
	P core.Vec3
	// Texture coordinates, when the shape provides them
	UV *core.Vec2
	// Mesh that was intersected (non-owning)
	Mesh *Mesh
	// Shading frame around NS
	Frame core.Frame
	// Incoming direction in shading-local coordinates, pointing away from
	// the surface
	Wi core.Vec3
}

// NewIntersection resolves a shape hit against the mesh and incoming ray
func NewIntersection(ray core.Ray, hit ShapeHit, mesh *Mesh) *Intersection {
	frame := core.NewFrame(hit.Normal)
	return &Intersection{
		Dist:  hit.T,
		NG:    hit.Normal,
		NS:    hit.Normal,
		P:     hit.Point,
		UV:    hit.UV,
		Mesh:  mesh,
		Frame: frame,
		Wi:    frame.ToLocal(ray.Direction.Negate()),
	}
}

// CosTheta returns the cosine of the incoming direction against the shading
// normal; positive means the surface is seen from the front
func (its *Intersection) CosTheta() float64 {
	return its.Wi.Z
}

// ToLocal transforms a world direction into the shading frame
func (its *Intersection) ToLocal(d core.Vec3) core.Vec3 {
	return its.Frame.ToLocal(d)
}

// ToWorld transforms a local direction into world space
func (its *Intersection) ToWorld(d core.Vec3) core.Vec3 {
	return its.Frame.ToWorld(d)
}
