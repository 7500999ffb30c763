package scene

import (
	"fmt"
	"math"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/volume"
)

// Scene holds the shared, read-only render state: geometry, emitters and
// their selection CDF, the camera and the optional participating medium.
// It must not be mutated once rendering starts.
type Scene struct {
	Camera   *Camera
	Meshes   []*geometry.Mesh
	Emitters []*geometry.Mesh
	Volume   *volume.HomogenousVolume
	Config   RenderConfig

	emittersCDF core.Distribution1D
}

// NewScene builds a scene and its emitter CDF. Configuration problems are
// fatal here rather than mid-render.
func NewScene(camera *Camera, meshes []*geometry.Mesh, vol *volume.HomogenousVolume, cfg RenderConfig) (*Scene, error) {
	if camera == nil {
		return nil, fmt.Errorf("scene requires a camera")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene config: %w", err)
	}

	var emitters []*geometry.Mesh
	var flux []float64
	for _, m := range meshes {
		if m.IsLight() {
			emitters = append(emitters, m)
			flux = append(flux, m.Flux())
		}
	}

	return &Scene{
		Camera:      camera,
		Meshes:      meshes,
		Emitters:    emitters,
		Volume:      vol,
		Config:      cfg,
		emittersCDF: core.NewDistribution1D(flux),
	}, nil
}

// MaxDepth returns the technique depth bound, or 0 for unbounded
func (s *Scene) MaxDepth() int {
	return s.Config.MaxDepth
}

// LightSampling is a sampled connection toward an emitter surface
type LightSampling struct {
	Emitter *geometry.Mesh
	PDF     core.PDF  // Solid-angle density of the sample
	P       core.Vec3 // Point on the emitter
	N       core.Vec3 // Emitter normal at P
	D       core.Vec3 // Unit direction from the shading point to P
	Weight  core.Color
}

// IsValid reports whether the sample carries any probability mass
func (ls *LightSampling) IsValid() bool {
	return !ls.PDF.IsZero()
}

// SampleLight samples an emitter and a point on it for an explicit
// connection from p. The returned pdf is in solid-angle measure; the weight
// is emission scaled by the geometry term over the full sampling density.
func (s *Scene) SampleLight(p core.Vec3, uSel, uPos float64, uv core.Vec2) LightSampling {
	if len(s.Emitters) == 0 {
		return LightSampling{PDF: core.SolidAnglePDF(0)}
	}

	pdfSel, emitter := s.RandomSelectEmitter(uSel)
	_ = uPos // Reserved for meshes with more than one primitive
	sampled := emitter.SamplePosition(uv)

	d := sampled.P.Subtract(p)
	dist := d.Length()
	if dist == 0 {
		return LightSampling{Emitter: emitter, PDF: core.SolidAnglePDF(0)}
	}
	d = d.Multiply(1.0 / dist)

	// Geometry term folds the area→solid-angle change of measure
	geom := math.Max(0, sampled.N.Dot(d.Negate())) / (dist * dist)
	if geom == 0 {
		return LightSampling{Emitter: emitter, P: sampled.P, N: sampled.N, D: d, PDF: core.SolidAnglePDF(0)}
	}

	areaPDF := sampled.PDF.Value()
	return LightSampling{
		Emitter: emitter,
		PDF:     core.SolidAnglePDF(areaPDF * pdfSel / geom),
		P:       sampled.P,
		N:       sampled.N,
		D:       d,
		Weight:  emitter.Emission.Scale(geom / (pdfSel * areaPDF)),
	}
}

// LightSamplingPDF describes an existing surface-to-emitter connection for
// pdf evaluation
type LightSamplingPDF struct {
	Mesh *geometry.Mesh // The emitter mesh that was reached
	O    core.Vec3      // Connection origin (shading point)
	P    core.Vec3      // Point reached on the emitter
	N    core.Vec3      // Emitter geometric normal at P
	Dir  core.Vec3      // Unit direction from O toward P
}

// DirectPDF returns the solid-angle density that SampleLight would have
// produced the given connection with
func (s *Scene) DirectPDF(ls LightSamplingPDF) core.PDF {
	if ls.Mesh == nil || !ls.Mesh.IsLight() {
		return core.SolidAnglePDF(0)
	}

	emitterID := -1
	for i, e := range s.Emitters {
		if e == ls.Mesh {
			emitterID = i
			break
		}
	}
	if emitterID < 0 {
		return core.SolidAnglePDF(0)
	}

	d := ls.P.Subtract(ls.O)
	dist2 := d.LengthSquared()
	cosLight := ls.N.Dot(ls.Dir.Negate())
	if dist2 == 0 || cosLight <= 0 {
		return core.SolidAnglePDF(0)
	}

	areaPDF := 1.0 / ls.Mesh.Shape.Area()
	geom := cosLight / dist2
	return core.SolidAnglePDF(areaPDF * s.emittersCDF.PDF(emitterID) / geom)
}

// RandomSelectEmitter picks an emitter proportionally to flux
func (s *Scene) RandomSelectEmitter(u float64) (float64, *geometry.Mesh) {
	id := s.emittersCDF.Sample(u)
	return s.emittersCDF.PDF(id), s.Emitters[id]
}

// EmittersSampler returns a sampler over the scene's emitters
func (s *Scene) EmittersSampler() *EmitterSampler {
	return &EmitterSampler{scene: s}
}

// EmitterSampler samples emission starting points for light-side techniques
type EmitterSampler struct {
	scene *Scene
}

// RandomSampleEmitterPosition samples an emitter and a position on it.
// The returned flux is the emitter's radiance scaled by π·area over the
// full selection density — the write-once root flux for light paths.
func (es *EmitterSampler) RandomSampleEmitterPosition(uSel, uPos float64, uv core.Vec2) (*geometry.Mesh, geometry.SampledPosition, core.Color) {
	sc := es.scene
	if len(sc.Emitters) == 0 {
		return nil, geometry.SampledPosition{}, core.Color{}
	}

	pdfSel, emitter := sc.RandomSelectEmitter(uSel)
	_ = uPos
	sampled := emitter.SamplePosition(uv)

	flux := emitter.Emission.Scale(math.Pi / (pdfSel * sampled.PDF.Value()))
	return emitter, sampled, flux
}

// HasEmitters reports whether any emitter exists
func (es *EmitterSampler) HasEmitters() bool {
	return len(es.scene.Emitters) > 0
}
