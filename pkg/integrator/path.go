package integrator

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/paths"
	"github.com/solas-render/solas/pkg/scene"
)

// IntegratorPath is a unidirectional path tracer with explicit light
// sampling, built on the path-construction framework. It is the reference
// the VPL and gradient integrators are validated against.
type IntegratorPath struct {
	MaxDepth int // 0 means unbounded
}

// NewIntegratorPath creates a path-traced pixel integrator
func NewIntegratorPath(maxDepth int) *IntegratorPath {
	return &IntegratorPath{MaxDepth: maxDepth}
}

// ComputePixel estimates the radiance through one pixel sample
func (pt *IntegratorPath) ComputePixel(ix, iy int, accel geometry.Acceleration, sc *scene.Scene, sampler core.Sampler) core.Color {
	technique := &TechniqueCameraPath{
		MaxDepth: pt.MaxDepth,
		Samplings: []paths.SamplingStrategy{
			&paths.DirectionalSamplingStrategy{FromSensor: true},
			&paths.LightSamplingStrategy{},
		},
		ImgPos: [2]int{ix, iy},
	}

	p := paths.NewPath()
	roots := paths.Generate(p, accel, sc, sc.EmittersSampler(), sampler, technique)
	if len(roots) == 0 {
		return core.Color{}
	}

	return technique.Evaluate(sc, p, roots[0].ID).SafeValue()
}
