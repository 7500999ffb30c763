package volume

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/material"
)

// PhaseFunction is the angular scattering distribution inside a medium.
// Directions are in world space; the isotropic phase has no preferred frame.
type PhaseFunction interface {
	// Eval returns the phase value for scattering from din to dout
	Eval(din, dout core.Vec3) core.Color

	// Sample draws an outgoing direction for the given incoming one
	Sample(din core.Vec3, u core.Vec2) material.SampledDirection
}

// Isotropic scatters uniformly over the sphere: p = 1/4π
type Isotropic struct{}

// NewIsotropic creates an isotropic phase function
func NewIsotropic() *Isotropic {
	return &Isotropic{}
}

// Eval returns the constant 1/4π
func (p *Isotropic) Eval(_, _ core.Vec3) core.Color {
	return core.ColorValue(float32(core.Inv4Pi))
}

// Sample draws a uniform sphere direction; the weight is one since the
// phase value and pdf cancel exactly
func (p *Isotropic) Sample(_ core.Vec3, u core.Vec2) material.SampledDirection {
	return material.SampledDirection{
		D:      core.UniformSampleSphere(u),
		Weight: core.ColorOne(),
		PDF:    core.SolidAnglePDF(core.Inv4Pi),
	}
}
