package material

import (
	"github.com/solas-render/solas/pkg/core"
)

// Diffuse is a Lambertian BSDF with constant reflectance
type Diffuse struct {
	Reflectance core.Color
}

// NewDiffuse creates a Lambertian BSDF
func NewDiffuse(reflectance core.Color) *Diffuse {
	return &Diffuse{Reflectance: reflectance}
}

// Sample draws a cosine-weighted direction. The weight collapses to the
// reflectance: (ρ/π · cosθ) / (cosθ/π) = ρ.
func (d *Diffuse) Sample(_ *core.Vec2, wi core.Vec3, u core.Vec2) (SampledDirection, bool) {
	if core.CosTheta(wi) <= 0 {
		return SampledDirection{}, false
	}

	wo := core.CosineSampleHemisphere(u)
	pdf := core.CosineHemispherePDF(wo)
	if pdf == 0 {
		return SampledDirection{}, false
	}

	return SampledDirection{
		D:      wo,
		Weight: d.Reflectance,
		PDF:    core.SolidAnglePDF(pdf),
	}, true
}

// Eval returns ρ/π · cosθo for directions on the upper hemisphere
func (d *Diffuse) Eval(_ *core.Vec2, wi, wo core.Vec3) core.Color {
	if core.CosTheta(wi) <= 0 || core.CosTheta(wo) <= 0 {
		return core.Color{}
	}
	return d.Reflectance.Scale(core.InvPi * core.CosTheta(wo))
}

// PDF returns the cosine-hemisphere density for wo
func (d *Diffuse) PDF(_ *core.Vec2, wi, wo core.Vec3) core.PDF {
	if core.CosTheta(wi) <= 0 {
		return core.SolidAnglePDF(0)
	}
	return core.SolidAnglePDF(core.CosineHemispherePDF(wo))
}

// IsSmooth returns false: the Lambertian lobe has full solid-angle support
func (d *Diffuse) IsSmooth() bool {
	return false
}
