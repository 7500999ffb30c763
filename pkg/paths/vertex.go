package paths

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/material"
	"github.com/solas-render/solas/pkg/volume"
)

// VertexID is a dense handle into a path's vertex arena
type VertexID int

// EdgeID is a dense handle into a path's edge arena
type EdgeID int

// InvalidVertexID marks a missing vertex reference. An edge whose To is
// invalid is a terminated extension (miss or Russian-roulette kill).
const InvalidVertexID VertexID = -1

// InvalidEdgeID marks a missing edge reference
const InvalidEdgeID EdgeID = -1

// VertexKind tags the variant of a path vertex
type VertexKind int

const (
	// VertexSensor is a camera-side path root
	VertexSensor VertexKind = iota
	// VertexSurface is a scattering event on a surface
	VertexSurface
	// VertexVolume is a scattering event inside a participating medium
	VertexVolume
	// VertexEmitter is a point on an emitter (light root or explicit connection)
	VertexEmitter
)

// Vertex is a sum-typed path vertex. The Kind tag selects which fields are
// meaningful; evaluators dispatch on it.
type Vertex struct {
	Kind VertexKind

	// Sensor: image-plane sample position and camera world position
	UV  core.Vec2
	Pos core.Vec3 // Also the emitter/volume world position

	// Surface: intersection, accumulated throughput, the direction sample
	// that produced the outgoing extension (if any), and the RR survival
	// weight applied on arrival
	Its        *geometry.Intersection
	Throughput core.Color
	SampledDir *material.SampledDirection
	RRWeight   float64

	// Shift-mapping Jacobian carried by replayed vertices; 1 for base
	// paths and for a valid replayed match
	PdfRatio float64

	// Volume: incoming direction and phase function at the scattering point
	DIn   core.Vec3
	Phase volume.PhaseFunction

	// Emitter: the sampled emitter and its normal at Pos
	Emitter *geometry.Mesh
	N       core.Vec3

	// Connectivity
	EdgeIn  EdgeID
	EdgeOut []EdgeID
}

// NewSensorVertex creates a camera root vertex
func NewSensorVertex(uv core.Vec2, pos core.Vec3) Vertex {
	return Vertex{
		Kind:     VertexSensor,
		UV:       uv,
		Pos:      pos,
		PdfRatio: 1.0,
		EdgeIn:   InvalidEdgeID,
	}
}

// NewSurfaceVertex creates a surface scattering vertex
func NewSurfaceVertex(its *geometry.Intersection, throughput core.Color, rrWeight float64) Vertex {
	return Vertex{
		Kind:       VertexSurface,
		Its:        its,
		Pos:        its.P,
		Throughput: throughput,
		RRWeight:   rrWeight,
		PdfRatio:   1.0,
		EdgeIn:     InvalidEdgeID,
	}
}

// NewVolumeVertex creates a volumetric scattering vertex
func NewVolumeVertex(pos core.Vec3, dIn core.Vec3, phase volume.PhaseFunction, throughput core.Color, rrWeight float64) Vertex {
	return Vertex{
		Kind:       VertexVolume,
		Pos:        pos,
		DIn:        dIn,
		Phase:      phase,
		Throughput: throughput,
		RRWeight:   rrWeight,
		PdfRatio:   1.0,
		EdgeIn:     InvalidEdgeID,
	}
}

// NewEmitterVertex creates an emitter vertex (light root or connection target)
func NewEmitterVertex(emitter *geometry.Mesh, pos, n core.Vec3) Vertex {
	return Vertex{
		Kind:     VertexEmitter,
		Emitter:  emitter,
		Pos:      pos,
		N:        n,
		PdfRatio: 1.0,
		EdgeIn:   InvalidEdgeID,
	}
}

// Position returns the world position of the vertex
func (v *Vertex) Position() core.Vec3 {
	return v.Pos
}

// Edge connects two vertices (or a vertex to a terminated extension).
// Weight is the transport multiplier (the sampled direction's weight,
// f·cosθ over its sampling pdf); Contrib is the emitted radiance carried through the edge
// relative to its origin vertex.
type Edge struct {
	// Unit direction in world space
	D core.Vec3
	// Distance to the To vertex; +Inf when the extension escaped the scene
	Dist float64
	// Density the edge was sampled with, in its measure
	PDFDirection core.PDF
	// Transport weight: f·cosθ ÷ sampling pdf, as returned by the sample
	Weight core.Color
	// Russian-roulette survival weight; zero on a killed extension
	RRWeight float64
	// Emitted radiance through the edge, relative to the From vertex
	Contrib core.Color
	// Endpoints; To is InvalidVertexID for terminated extensions
	From VertexID
	To   VertexID
}
