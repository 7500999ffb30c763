package paths

import (
	"math"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/scene"
	"github.com/solas-render/solas/pkg/volume"
)

// SamplingStrategy extends a path from a vertex, or evaluates the density
// with which it would have produced an existing edge (for MIS).
type SamplingStrategy interface {
	// Sample tries to extend the path from the given vertex. It may
	// register a new vertex and edge, register a terminated edge, or do
	// nothing. It returns the new frontier vertex and its accumulated
	// throughput; ok is false when expansion must not continue from the
	// result (miss, RR kill, or a connection vertex).
	Sample(p *Path, vid VertexID, accel geometry.Acceleration, sc *scene.Scene,
		throughput core.Color, sampler core.Sampler, depth int) (VertexID, core.Color, bool)

	// Pdf returns the density (in the edge's measure) with which this
	// strategy would have produced the given edge from the given vertex,
	// or false when it cannot produce it.
	Pdf(sc *scene.Scene, p *Path, vid VertexID, eid EdgeID) (float64, bool)
}

// Russian-roulette survival cap
const rrSurvivalMax = 0.95

// DirectionalSamplingStrategy extends the path by sampling a new direction
// at the current vertex: a camera ray at a sensor, a BSDF direction at a
// surface, a phase direction in a volume, a cosine-weighted hemisphere
// direction at an emitter root.
type DirectionalSamplingStrategy struct {
	FromSensor bool
}

// Sample implements SamplingStrategy
func (d *DirectionalSamplingStrategy) Sample(p *Path, vid VertexID, accel geometry.Acceleration,
	sc *scene.Scene, throughput core.Color, sampler core.Sampler, depth int) (VertexID, core.Color, bool) {

	v := p.Vertex(vid)
	switch v.Kind {
	case VertexSensor:
		ray := sc.Camera.Generate(v.UV)
		return d.extend(p, vid, accel, sc, ray, throughput, core.ColorOne(), core.SolidAnglePDF(1.0), sampler, false)

	case VertexSurface:
		its := v.Its
		sampled, ok := its.Mesh.BSDF.Sample(its.UV, its.Wi, sampler.Next2D())
		if !ok {
			return InvalidVertexID, core.Color{}, false
		}
		v.SampledDir = &sampled

		newThroughput := throughput.Mul(sampled.Weight)
		if newThroughput.IsZero() {
			return InvalidVertexID, core.Color{}, false
		}

		dOut := its.ToWorld(sampled.D)
		ray := core.NewRay(its.P, dOut)
		return d.extend(p, vid, accel, sc, ray, newThroughput, sampled.Weight, sampled.PDF, sampler, true)

	case VertexVolume:
		sampled := v.Phase.Sample(v.DIn, sampler.Next2D())
		v.SampledDir = &sampled

		newThroughput := throughput.Mul(sampled.Weight)
		if newThroughput.IsZero() {
			return InvalidVertexID, core.Color{}, false
		}

		ray := core.NewRay(v.Pos, sampled.D)
		return d.extend(p, vid, accel, sc, ray, newThroughput, sampled.Weight, sampled.PDF, sampler, true)

	case VertexEmitter:
		// Cosine-weighted emission direction; the π and cosine cancel
		// against the Lambertian emission folded into the root flux
		frame := core.NewFrame(v.N)
		local := core.CosineSampleHemisphere(sampler.Next2D())
		pdf := core.CosineHemispherePDF(local)
		if pdf == 0 {
			return InvalidVertexID, core.Color{}, false
		}

		ray := core.NewRay(v.Pos, frame.ToWorld(local))
		return d.extend(p, vid, accel, sc, ray, throughput, core.ColorOne(), core.SolidAnglePDF(pdf), sampler, true)
	}

	return InvalidVertexID, core.Color{}, false
}

// extend traces the sampled ray, optionally samples the medium along it,
// applies Russian roulette, and registers the resulting edge and vertex.
// The draw order — direction (2D), trace, medium (2D, when present), RR
// (1D, only on a hit or medium event) — is fixed: replay determinism
// depends on it.
func (d *DirectionalSamplingStrategy) extend(p *Path, from VertexID, accel geometry.Acceleration,
	sc *scene.Scene, ray core.Ray, newThroughput core.Color, weight core.Color, pdf core.PDF,
	sampler core.Sampler, useRR bool) (VertexID, core.Color, bool) {

	its := accel.Trace(ray)

	// Homogeneous medium: sample a scattering event along the segment
	var mrec volume.MediumRecord
	mediumScatter := false
	if sc.Volume != nil {
		mediumRay := ray
		if its != nil {
			mediumRay.TFar = its.Dist
		}
		mrec = sc.Volume.Sample(mediumRay, sampler.Next2D())
		if !mrec.Exited {
			mediumScatter = true
			newThroughput = newThroughput.Mul(mrec.W)
			weight = weight.Mul(mrec.W)
		}
	}

	if its == nil && !mediumScatter {
		// Escaped the scene: terminated edge, no RR draw
		p.RegisterEdge(Edge{
			D:            ray.Direction,
			Dist:         math.Inf(1),
			PDFDirection: pdf,
			Weight:       weight,
			RRWeight:     1.0,
			From:         from,
			To:           InvalidVertexID,
		})
		return InvalidVertexID, core.Color{}, false
	}

	dist := math.Inf(1)
	if mediumScatter {
		dist = mrec.T
	} else if its != nil {
		dist = its.Dist
	}

	rrWeight := 1.0
	if useRR {
		q := math.Min(rrSurvivalMax, newThroughput.ChannelMax())
		if sampler.Next() >= q {
			// Killed: the edge stays, the next vertex does not exist
			p.RegisterEdge(Edge{
				D:            ray.Direction,
				Dist:         dist,
				PDFDirection: pdf,
				Weight:       weight,
				RRWeight:     0.0,
				From:         from,
				To:           InvalidVertexID,
			})
			return InvalidVertexID, core.Color{}, false
		}
		rrWeight = 1.0 / q
		newThroughput = newThroughput.Scale(rrWeight)
	}

	var next Vertex
	var contrib core.Color
	if mediumScatter {
		next = NewVolumeVertex(ray.At(mrec.T), ray.Direction, sc.Volume.Phase, newThroughput, rrWeight)
	} else {
		next = NewSurfaceVertex(its, newThroughput, rrWeight)
		// Radiance emitted through this edge (front-facing emitters only)
		if d.FromSensor && its.Mesh.IsLight() && its.CosTheta() > 0 {
			contrib = weight.Scale(rrWeight).Mul(its.Mesh.Emission)
		}
	}

	nid := p.RegisterVertex(next)
	p.RegisterEdge(Edge{
		D:            ray.Direction,
		Dist:         dist,
		PDFDirection: pdf,
		Weight:       weight,
		RRWeight:     rrWeight,
		Contrib:      contrib,
		From:         from,
		To:           nid,
	})
	return nid, newThroughput, true
}

// Pdf implements SamplingStrategy: the density of producing the given edge
// by BSDF/phase sampling from the given vertex
func (d *DirectionalSamplingStrategy) Pdf(sc *scene.Scene, p *Path, vid VertexID, eid EdgeID) (float64, bool) {
	v := p.Vertex(vid)
	e := p.Edge(eid)

	if e.PDFDirection.Measure != core.MeasureSolidAngle {
		return 0, false
	}

	switch v.Kind {
	case VertexSurface:
		if v.Its.Mesh.BSDF.IsSmooth() {
			return 0, false
		}
		pdf := v.Its.Mesh.BSDF.PDF(v.Its.UV, v.Its.Wi, v.Its.ToLocal(e.D))
		if pdf.Measure != core.MeasureSolidAngle {
			return 0, false
		}
		return pdf.Value(), true

	case VertexVolume:
		// Phase sampling is proportional to the phase value itself
		return v.Phase.Eval(v.DIn, e.D).Avg(), true

	default:
		return 0, false
	}
}

// LightSamplingStrategy connects a surface vertex to a sampled point on an
// emitter. Occluded connections still register the edge (with zero
// contribution) so the MIS combiner sees both strategies.
type LightSamplingStrategy struct{}

// Sample implements SamplingStrategy. The connection vertex is never added
// to the frontier.
func (l *LightSamplingStrategy) Sample(p *Path, vid VertexID, accel geometry.Acceleration,
	sc *scene.Scene, throughput core.Color, sampler core.Sampler, depth int) (VertexID, core.Color, bool) {

	v := p.Vertex(vid)
	if v.Kind != VertexSurface {
		return InvalidVertexID, core.Color{}, false
	}
	its := v.Its
	if its.Mesh.BSDF.IsSmooth() {
		// Delta lobes cannot be connected explicitly
		return InvalidVertexID, core.Color{}, false
	}

	lr := sc.SampleLight(its.P, sampler.Next(), sampler.Next(), sampler.Next2D())
	if !lr.IsValid() {
		return InvalidVertexID, core.Color{}, false
	}

	dOutLocal := its.ToLocal(lr.D)
	if dOutLocal.Z <= 0 {
		return InvalidVertexID, core.Color{}, false
	}

	var contrib core.Color
	if accel.Visible(its.P, lr.P) {
		bsdfVal := its.Mesh.BSDF.Eval(its.UV, its.Wi, dOutLocal)
		contrib = bsdfVal.Mul(lr.Weight)
	}

	nid := p.RegisterVertex(NewEmitterVertex(lr.Emitter, lr.P, lr.N))
	p.RegisterEdge(Edge{
		D:            lr.D,
		Dist:         lr.P.Subtract(its.P).Length(),
		PDFDirection: lr.PDF,
		Weight:       core.ColorOne(),
		RRWeight:     1.0,
		Contrib:      contrib,
		From:         vid,
		To:           nid,
	})

	// Connections terminate; expansion never continues from the emitter
	return InvalidVertexID, core.Color{}, false
}

// Pdf implements SamplingStrategy: the density of connecting the given edge
// by explicit emitter sampling
func (l *LightSamplingStrategy) Pdf(sc *scene.Scene, p *Path, vid VertexID, eid EdgeID) (float64, bool) {
	v := p.Vertex(vid)
	e := p.Edge(eid)

	if v.Kind != VertexSurface || v.Its.Mesh.BSDF.IsSmooth() {
		return 0, false
	}
	if e.PDFDirection.Measure != core.MeasureSolidAngle {
		return 0, false
	}
	if e.To == InvalidVertexID {
		return 0, false
	}

	to := p.Vertex(e.To)
	switch to.Kind {
	case VertexEmitter:
		pdf := sc.DirectPDF(scene.LightSamplingPDF{
			Mesh: to.Emitter,
			O:    v.Its.P,
			P:    to.Pos,
			N:    to.N,
			Dir:  e.D,
		})
		return pdf.Value(), true

	case VertexSurface:
		// A BSDF-sampled edge that landed on an emissive mesh could also
		// have been produced by light sampling
		if !to.Its.Mesh.IsLight() || to.Its.CosTheta() <= 0 {
			return 0, false
		}
		pdf := sc.DirectPDF(scene.LightSamplingPDF{
			Mesh: to.Its.Mesh,
			O:    v.Its.P,
			P:    to.Its.P,
			N:    to.Its.NG,
			Dir:  e.D,
		})
		return pdf.Value(), true

	default:
		return 0, false
	}
}
