package paths

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/scene"
)

// RootVertex is a path root with its initial throughput
type RootVertex struct {
	ID         VertexID
	Throughput core.Color
}

// Technique owns the roots, the strategy list, and the depth bound of a
// path construction scheme. Camera techniques root at a sensor vertex,
// light techniques at a sampled emitter position.
type Technique interface {
	// Init creates the root vertices. Light techniques capture the scaled
	// flux returned by emitter sampling here, exactly once.
	Init(p *Path, accel geometry.Acceleration, sc *scene.Scene,
		sampler core.Sampler, emitters *scene.EmitterSampler) []RootVertex

	// Expand reports whether to try extending the given vertex at depth
	Expand(v *Vertex, depth int) bool

	// Strategies returns the sampling strategies to apply at the vertex,
	// in a stable order
	Strategies(v *Vertex) []SamplingStrategy
}
