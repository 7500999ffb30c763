package integrator

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/paths"
	"github.com/solas-render/solas/pkg/scene"
)

// IntegratorGradientPath is a gradient-domain path tracer. Every pixel
// sample builds a base path under a replay sampler, then retraces four
// shifted neighbour paths from the same random tape and outputs per-pixel
// finite-difference gradients alongside the primal estimate.
type IntegratorGradientPath struct {
	MaxDepth int // 0 means unbounded

	// MinSurvival enables the survival filter when positive: dark base
	// paths are killed early with the matching compensation weight
	MinSurvival float64

	// SurvivalScale is the luminance divisor of the survival probability
	SurvivalScale float64
}

// NewIntegratorGradientPath creates a gradient-domain path tracer
func NewIntegratorGradientPath(maxDepth int, minSurvival, survivalScale float64) *IntegratorGradientPath {
	if survivalScale <= 0 {
		survivalScale = 0.1
	}
	return &IntegratorGradientPath{
		MaxDepth:      maxDepth,
		MinSurvival:   minSurvival,
		SurvivalScale: survivalScale,
	}
}

type eventKind int

const (
	// eventEmission: a BSDF-sampled edge landed on an emitter
	eventEmission eventKind = iota
	// eventLight: an explicit light connection
	eventLight
)

// pathEvent is one radiance-carrying event on the directional chain of a
// path, with the densities the pairwise MIS weights are built from
type pathEvent struct {
	depth   int
	kind    eventKind
	contrib core.Color
	pdf     float64 // Density of the event's own strategy
	denom   float64 // Sum of both strategies' densities for the edge
	ratio   float64 // Shift Jacobian (pdf_ratio); 1 for a valid replay
}

// collectPathEvents walks the directional chain from the root and gathers
// the emission and light-connection events, plus the very-direct emitter
// contribution at depth one.
func collectPathEvents(sc *scene.Scene, p *paths.Path, root paths.VertexID) ([]pathEvent, core.Color) {
	var events []pathEvent
	veryDirect := core.Color{}

	cur := root
	depth := 0
	for cur != paths.InvalidVertexID {
		v := p.Vertex(cur)
		next := paths.InvalidVertexID

		for _, eid := range v.EdgeOut {
			e := p.Edge(eid)
			if e.To == paths.InvalidVertexID {
				continue
			}
			switch p.Vertex(e.To).Kind {
			case paths.VertexSurface, paths.VertexVolume:
				next = e.To
			case paths.VertexEmitter:
				// Explicit connection; occluded connections carry no event
				if v.Kind != paths.VertexSurface || e.Contrib.IsZero() {
					continue
				}
				lightPdf := e.PDFDirection.Value()
				bsdfPdf := v.Its.Mesh.BSDF.PDF(v.Its.UV, v.Its.Wi, v.Its.ToLocal(e.D))
				events = append(events, pathEvent{
					depth:   depth,
					kind:    eventLight,
					contrib: v.Throughput.Mul(e.Contrib),
					pdf:     lightPdf,
					denom:   lightPdf + bsdfPdf.Value(),
					ratio:   v.PdfRatio,
				})
			}
		}

		if v.Kind == paths.VertexSurface && v.Its.Mesh.IsLight() && v.Its.CosTheta() > 0 {
			contrib := v.Throughput.Mul(v.Its.Mesh.Emission)
			if depth == 1 {
				// Directly visible emitter, kept out of the gradients
				veryDirect = veryDirect.Add(contrib)
			} else {
				predEdge := p.Edge(v.EdgeIn)
				pdf, denom := 1.0, 1.0
				if predEdge.PDFDirection.Measure == core.MeasureSolidAngle {
					pdf = predEdge.PDFDirection.Value()
					predPos := p.Vertex(predEdge.From).Position()
					lightPdf := sc.DirectPDF(scene.LightSamplingPDF{
						Mesh: v.Its.Mesh,
						O:    predPos,
						P:    v.Its.P,
						N:    v.Its.NG,
						Dir:  predEdge.D,
					})
					denom = pdf + lightPdf.Value()
				}
				events = append(events, pathEvent{
					depth:   depth,
					kind:    eventEmission,
					contrib: contrib,
					pdf:     pdf,
					denom:   denom,
					ratio:   v.PdfRatio,
				})
			}
		}

		cur = next
		depth++
	}

	return events, veryDirect
}

func findEvent(events []pathEvent, depth int, kind eventKind) *pathEvent {
	for i := range events {
		if events[i].depth == depth && events[i].kind == kind {
			return &events[i]
		}
	}
	return nil
}

// ComputePixelGradient builds the base path and its four shifted replays
// and combines them with pairwise balance-heuristic weights.
func (g *IntegratorGradientPath) ComputePixelGradient(ix, iy int, accel geometry.Acceleration,
	sc *scene.Scene, sampler core.Sampler) ColorGradient {

	technique := &TechniqueCameraPath{
		MaxDepth: g.MaxDepth,
		Samplings: []paths.SamplingStrategy{
			&paths.DirectionalSamplingStrategy{FromSensor: true},
			&paths.LightSamplingStrategy{},
		},
		ImgPos: [2]int{ix, iy},
	}
	emitters := sc.EmittersSampler()
	replay := core.NewReplaySampler(sampler)

	basePath := paths.NewPath()
	baseRoots := paths.Generate(basePath, accel, sc, emitters, replay, technique)
	if len(baseRoots) == 0 {
		return ColorGradient{}
	}
	baseEvents, veryDirect := collectPathEvents(sc, basePath, baseRoots[0].ID)

	// Base value with plain MIS weights; drives the survival lottery
	rootValue := veryDirect
	for _, e := range baseEvents {
		if e.denom > 0 {
			rootValue = rootValue.Add(e.contrib.Scale(e.pdf / e.denom))
		}
	}

	// Survival filter. The lottery draw is unregistered: replaying it
	// would misalign every shift at depth > 1.
	weightSurvival := 1.0
	if g.MinSurvival > 0 {
		probSurvival := clampf(rootValue.Luminance()/g.SurvivalScale, g.MinSurvival, 1.0)
		if probSurvival < 1.0 && replay.Raw() >= probSurvival {
			return ColorGradient{}
		}
		weightSurvival = 1.0 / probSurvival
	}

	out := ColorGradient{VeryDirect: veryDirect.Scale(weightSurvival)}

	width, height := sc.Camera.Size()
	for i, off := range GradientOrder {
		px := ix + off[0]
		py := iy + off[1]

		if px < 0 || py < 0 || px >= width || py >= height {
			// No neighbour: the base keeps its unpaired MIS weight,
			// radiance and gradient stay zero
			for _, b := range baseEvents {
				if b.denom > 0 {
					out.Main = out.Main.Add(b.contrib.Scale(b.pdf / b.denom * weightSurvival))
				}
			}
			continue
		}

		// Retrace the neighbour from the same tape
		technique.ImgPos = [2]int{px, py}
		replay.Rewind()
		shiftPath := paths.NewPath()
		shiftRoots := paths.Generate(shiftPath, accel, sc, emitters, replay, technique)
		var shiftEvents []pathEvent
		if len(shiftRoots) > 0 {
			shiftEvents, _ = collectPathEvents(sc, shiftPath, shiftRoots[0].ID)
		}

		for _, b := range baseEvents {
			denom := b.denom
			shiftContrib := core.Color{}
			if s := findEvent(shiftEvents, b.depth, b.kind); s != nil && s.denom > 0 {
				// A structural divergence has no matching event and
				// contributes nothing to the denominator (Jacobian 0)
				denom += s.denom * s.ratio
				shiftContrib = s.contrib
			}
			if denom <= 0 {
				continue
			}
			w := b.pdf / denom * weightSurvival

			out.Main = out.Main.Add(b.contrib.Scale(w))
			out.Radiances[i] = out.Radiances[i].Add(shiftContrib.Scale(w))
			out.Gradients[i] = out.Gradients[i].Add(shiftContrib.Subtract(b.contrib).Scale(w))
		}
	}

	out.VeryDirect = out.VeryDirect.SafeValue()
	out.Main = out.Main.SafeValue()
	for i := range out.Radiances {
		out.Radiances[i] = out.Radiances[i].SafeValue()
		out.Gradients[i] = out.Gradients[i].SafeValue()
	}
	return out
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
