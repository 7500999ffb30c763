package material

import (
	"github.com/solas-render/solas/pkg/core"
)

// SampledDirection is the result of sampling a BSDF or phase function.
// Weight is the transport weight f·cosθ / pdf — the throughput multiplier
// for the sampled direction.
type SampledDirection struct {
	D      core.Vec3  // Sampled direction in shading-local coordinates
	Weight core.Color // f·cosθ / pdf
	PDF    core.PDF   // Density the direction was drawn with
}

// BSDF models surface scattering. Directions are expressed in the shading
// frame of the intersection (normal = +Z); wi points away from the surface
// toward the previous vertex.
type BSDF interface {
	// Sample draws an outgoing direction for the given incoming one.
	// Returns false when no direction could be sampled (grazing or
	// back-facing configurations).
	Sample(uv *core.Vec2, wi core.Vec3, u core.Vec2) (SampledDirection, bool)

	// Eval returns f(wi, wo)·cosθo for a specific direction pair in
	// solid-angle measure. Smooth BSDFs evaluate to zero: a connection
	// through a delta lobe has zero measure.
	Eval(uv *core.Vec2, wi, wo core.Vec3) core.Color

	// PDF returns the density Sample would have produced wo with
	PDF(uv *core.Vec2, wi, wo core.Vec3) core.PDF

	// IsSmooth reports whether the BSDF is a delta distribution. Smooth
	// BSDFs are excluded from explicit light connections and shift MIS.
	IsSmooth() bool
}
