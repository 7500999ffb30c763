package integrator

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/scene"
)

// Integrator is a whole-image light transport algorithm; it drives its own
// passes and returns the finished buffers (the VPL integrator is one).
type Integrator interface {
	Compute(accel geometry.Acceleration, sc *scene.Scene) *BufferCollection
}

// PixelIntegrator estimates radiance for one pixel sample; the orchestrator
// iterates pixels and samples over tiles.
type PixelIntegrator interface {
	ComputePixel(ix, iy int, accel geometry.Acceleration, sc *scene.Scene, sampler core.Sampler) core.Color
}

// GradientIntegrator estimates a pixel sample together with its four
// shifted neighbours.
type GradientIntegrator interface {
	ComputePixelGradient(ix, iy int, accel geometry.Acceleration, sc *scene.Scene, sampler core.Sampler) ColorGradient
}

// ColorGradient is the per-sample output record of a gradient integrator
type ColorGradient struct {
	// Contribution from directly visible emitters, kept out of the
	// gradient channels
	VeryDirect core.Color
	// MIS-weighted base-path contribution
	Main core.Color
	// Shift-path radiances, one per neighbour, splatted at the shifted pixel
	Radiances [4]core.Color
	// Finite differences (shift − base), one per neighbour
	Gradients [4]core.Color
}

// GradientOrder lists the four neighbour pixel offsets, in the order the
// shift paths are generated
var GradientOrder = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// GradientAxis selects the gradient buffer an offset belongs to
type GradientAxis int

const (
	GradientX GradientAxis = iota
	GradientY
)

// GradientDirection is the signed axis of a neighbour offset
type GradientDirection struct {
	Axis GradientAxis
	Sign int
}

// GradientDirections maps each entry of GradientOrder to its signed axis
var GradientDirections = [4]GradientDirection{
	{Axis: GradientX, Sign: 1},
	{Axis: GradientY, Sign: 1},
	{Axis: GradientX, Sign: -1},
	{Axis: GradientY, Sign: -1},
}

// Buffer names produced by the integrators
const (
	BufferPrimal     = "primal"
	BufferVeryDirect = "very_direct"
	BufferGradientX  = "gradient_x"
	BufferGradientY  = "gradient_y"
)
