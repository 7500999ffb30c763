package integrator

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/paths"
	"github.com/solas-render/solas/pkg/scene"
)

// TechniqueCameraPath roots a path at the sensor, jittered inside the
// target pixel. It is shared by the per-pixel path tracer and the
// gradient-domain path tracer (which mutates ImgPos between replays).
type TechniqueCameraPath struct {
	MaxDepth  int // 0 means unbounded
	Samplings []paths.SamplingStrategy
	ImgPos    [2]int
}

// Init creates the sensor root. The pixel jitter consumes two sampler
// draws before anything else.
func (t *TechniqueCameraPath) Init(p *paths.Path, _ geometry.Acceleration, sc *scene.Scene,
	sampler core.Sampler, _ *scene.EmitterSampler) []paths.RootVertex {

	uv := core.NewVec2(
		float64(t.ImgPos[0])+sampler.Next(),
		float64(t.ImgPos[1])+sampler.Next(),
	)
	root := p.RegisterVertex(paths.NewSensorVertex(uv, sc.Camera.Position()))
	return []paths.RootVertex{{ID: root, Throughput: core.ColorOne()}}
}

// Expand continues while below the depth bound
func (t *TechniqueCameraPath) Expand(_ *paths.Vertex, depth int) bool {
	return t.MaxDepth == 0 || depth < t.MaxDepth
}

// Strategies returns the configured strategy list
func (t *TechniqueCameraPath) Strategies(_ *paths.Vertex) []paths.SamplingStrategy {
	return t.Samplings
}

// Evaluate walks the graph from a vertex and sums the MIS-combined
// contributions of its outgoing edges plus the recursively evaluated
// children. Contributions are relative to the vertex, so the caller passes
// the root.
func (t *TechniqueCameraPath) Evaluate(sc *scene.Scene, p *paths.Path, vid paths.VertexID) core.Color {
	v := p.Vertex(vid)
	li := core.Color{}

	switch v.Kind {
	case paths.VertexSurface, paths.VertexVolume:
		for _, eid := range v.EdgeOut {
			e := p.Edge(eid)
			if !e.Contrib.IsZero() {
				weight := 1.0
				if e.PDFDirection.Measure == core.MeasureSolidAngle {
					total := 0.0
					for _, s := range t.Samplings {
						if pdf, ok := s.Pdf(sc, p, vid, eid); ok {
							total += pdf
						}
					}
					if total > 0 {
						weight = e.PDFDirection.Value() / total
					}
				}
				li = li.Add(e.Contrib.Scale(weight))
			}

			if e.To != paths.InvalidVertexID {
				next := t.Evaluate(sc, p, e.To)
				li = li.Add(e.Weight.Scale(e.RRWeight).Mul(next))
			}
		}

	case paths.VertexSensor:
		for _, eid := range v.EdgeOut {
			e := p.Edge(eid)
			if !e.Contrib.IsZero() {
				li = li.Add(e.Contrib)
			}
			if e.To != paths.InvalidVertexID {
				li = li.Add(e.Weight.Mul(t.Evaluate(sc, p, e.To)))
			}
		}
	}

	return li
}
