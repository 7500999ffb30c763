package integrator

import (
	"log/slog"
	"sync"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/paths"
	"github.com/solas-render/solas/pkg/scene"
	"github.com/solas-render/solas/pkg/volume"
)

// IntegratorVPL renders in two passes: trace light paths into a reusable
// pool of virtual point lights, then gather the pool at every camera pixel.
type IntegratorVPL struct {
	NbVPL          int
	MaxDepth       int     // 0 means unbounded
	ClampingFactor float64 // 0 disables clamping
	NbThreads      int     // 0 means hardware concurrency
}

// VPLKind tags the variant of a virtual point light
type VPLKind int

const (
	// VPLEmitter caches a point on an emitter surface
	VPLEmitter VPLKind = iota
	// VPLSurface caches a surface scattering event
	VPLSurface
	// VPLVolume caches a volumetric scattering event
	VPLVolume
)

// VPL is a cached light-path sample used as a point source during gathering
type VPL struct {
	Kind VPLKind

	// Emitter: position, normal and emitted radiance (scaled flux)
	Pos             core.Vec3
	N               core.Vec3
	EmittedRadiance core.Color

	// Surface: the cached intersection and the radiance carried to it
	Its      *geometry.Intersection
	Radiance core.Color

	// Volume: incoming direction and phase at the scattering point
	DIn   core.Vec3
	Phase volume.PhaseFunction
}

// TechniqueVPL roots a path at a randomly sampled emitter position. The
// scaled flux returned by emitter sampling is captured exactly once and
// reused when the path is converted to VPLs.
type TechniqueVPL struct {
	MaxDepth  int
	Samplings []paths.SamplingStrategy
	Flux      *core.Color
}

// Init samples the emitter root and captures its flux
func (t *TechniqueVPL) Init(p *paths.Path, _ geometry.Acceleration, sc *scene.Scene,
	sampler core.Sampler, emitters *scene.EmitterSampler) []paths.RootVertex {

	emitter, sampled, flux := emitters.RandomSampleEmitterPosition(
		sampler.Next(), sampler.Next(), sampler.Next2D())
	if emitter == nil {
		return nil
	}

	t.Flux = &flux
	root := p.RegisterVertex(paths.NewEmitterVertex(emitter, sampled.P, sampled.N))
	return []paths.RootVertex{{ID: root, Throughput: core.ColorOne()}}
}

// Expand continues while below the depth bound
func (t *TechniqueVPL) Expand(_ *paths.Vertex, depth int) bool {
	return t.MaxDepth == 0 || depth < t.MaxDepth
}

// Strategies returns the configured strategy list
func (t *TechniqueVPL) Strategies(_ *paths.Vertex) []paths.SamplingStrategy {
	return t.Samplings
}

// ConvertVPL walks the path in depth-first emission order and produces one
// VPL per surface, volume and emitter vertex. The radiance carried by each
// VPL is the product of edge weight × RR weight from the root, times the
// captured root flux.
func (t *TechniqueVPL) ConvertVPL(p *paths.Path, vid paths.VertexID, vpls *[]VPL, flux core.Color) {
	v := p.Vertex(vid)
	switch v.Kind {
	case paths.VertexSurface:
		*vpls = append(*vpls, VPL{
			Kind:     VPLSurface,
			Its:      v.Its,
			Pos:      v.Its.P,
			Radiance: flux,
		})
		for _, eid := range v.EdgeOut {
			e := p.Edge(eid)
			if e.To != paths.InvalidVertexID {
				t.ConvertVPL(p, e.To, vpls, flux.Mul(e.Weight).Scale(e.RRWeight))
			}
		}

	case paths.VertexVolume:
		*vpls = append(*vpls, VPL{
			Kind:     VPLVolume,
			Pos:      v.Pos,
			DIn:      v.DIn,
			Phase:    v.Phase,
			Radiance: flux,
		})
		for _, eid := range v.EdgeOut {
			e := p.Edge(eid)
			if e.To != paths.InvalidVertexID {
				t.ConvertVPL(p, e.To, vpls, flux.Mul(e.Weight).Scale(e.RRWeight))
			}
		}

	case paths.VertexEmitter:
		rootFlux := *t.Flux
		*vpls = append(*vpls, VPL{
			Kind:            VPLEmitter,
			Pos:             v.Pos,
			N:               v.N,
			EmittedRadiance: rootFlux,
		})
		for _, eid := range v.EdgeOut {
			e := p.Edge(eid)
			if e.To != paths.InvalidVertexID {
				t.ConvertVPL(p, e.To, vpls, rootFlux.Mul(e.Weight).Scale(e.RRWeight))
			}
		}
	}
}

// GenerateVPLs runs pass one: light paths are traced until the pool holds
// at least NbVPL entries. Returns the pool and the number of paths shot.
func (v *IntegratorVPL) GenerateVPLs(accel geometry.Acceleration, sc *scene.Scene, sampler core.Sampler) ([]VPL, int) {
	emitters := sc.EmittersSampler()
	if !emitters.HasEmitters() {
		return nil, 0
	}

	var vpls []VPL
	nbPathShot := 0
	for len(vpls) < v.NbVPL {
		technique := &TechniqueVPL{
			MaxDepth: v.MaxDepth,
			Samplings: []paths.SamplingStrategy{
				&paths.DirectionalSamplingStrategy{FromSensor: false},
			},
		}
		p := paths.NewPath()
		roots := paths.Generate(p, accel, sc, emitters, sampler, technique)
		if len(roots) > 0 {
			technique.ConvertVPL(p, roots[0].ID, &vpls, core.ColorOne())
		}
		nbPathShot++
	}
	return vpls, nbPathShot
}

// Compute renders the image: VPL generation followed by parallel gathering
// over tiles.
func (v *IntegratorVPL) Compute(accel geometry.Acceleration, sc *scene.Scene) *BufferCollection {
	names := []string{BufferPrimal}
	width, height := sc.Camera.Size()
	image := NewBufferCollection(0, 0, width, height, names)

	slog.Info("generating VPLs", "target", v.NbVPL)
	sampler := core.NewIndependentSampler(sc.Config.Seed + 1)
	vpls, nbPathShot := v.GenerateVPLs(accel, sc, sampler)
	if nbPathShot == 0 {
		slog.Warn("no emitters in scene, VPL image is black")
		return image
	}
	normVPL := 1.0 / float64(nbPathShot)
	slog.Info("gathering VPLs", "vpls", len(vpls), "paths_shot", nbPathShot)

	// Gather in parallel tiles; each worker owns its block
	tiles := tileBounds(width, height, sc.Config.TileSize)
	blocks := make([]*BufferCollection, len(tiles))
	tasks := make(chan int, len(tiles))
	for i := range tiles {
		tasks <- i
	}
	close(tasks)

	var wg sync.WaitGroup
	for w := 0; w < workerCount(v.NbThreads, sc.Config.NbThreads); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				t := tiles[idx]
				block := NewBufferCollection(t.x0, t.y0, t.x1-t.x0, t.y1-t.y0, names)
				for iy := t.y0; iy < t.y1; iy++ {
					for ix := t.x0; ix < t.x1; ix++ {
						pixelSampler := core.NewPixelSampler(sc.Config.Seed, ix, iy)
						for s := 0; s < sc.Config.NbSamples; s++ {
							c := v.computeVPLContrib(ix, iy, accel, sc, pixelSampler, vpls, normVPL)
							block.Accumulate(ix-t.x0, iy-t.y0, c.SafeValue(), BufferPrimal)
						}
					}
				}
				block.Scale(1.0 / float64(sc.Config.NbSamples))
				blocks[idx] = block
			}
		}()
	}
	wg.Wait()

	// Final accumulation is single-threaded
	for _, block := range blocks {
		image.AccumulateCollection(block)
	}
	return image
}

// transmittance between two points against the optional homogeneous medium
func (v *IntegratorVPL) transmittance(medium *volume.HomogenousVolume, p1, p2 core.Vec3) core.Color {
	if medium == nil {
		return core.ColorOne()
	}
	return medium.TransmittanceBetween(p1, p2)
}

// clampContribution caps a single VPL contribution to bound the classic
// near-singularity bias
func (v *IntegratorVPL) clampContribution(c core.Color) core.Color {
	if v.ClampingFactor <= 0 {
		return c
	}
	lum := c.Luminance()
	if lum > v.ClampingFactor {
		return c.Scale(v.ClampingFactor / lum)
	}
	return c
}

// gatheringSurface sums the pool contributions at a surface point
func (v *IntegratorVPL) gatheringSurface(medium *volume.HomogenousVolume, accel geometry.Acceleration,
	vpls []VPL, normVPL float64, its *geometry.Intersection) core.Color {

	li := core.Color{}

	// Self emission
	if its.CosTheta() > 0 {
		li = li.Add(its.Mesh.Emission)
	}

	smooth := its.Mesh.BSDF.IsSmooth()
	for i := range vpls {
		vpl := &vpls[i]
		switch vpl.Kind {
		case VPLEmitter:
			if smooth || !accel.Visible(vpl.Pos, its.P) {
				continue
			}
			d := vpl.Pos.Subtract(its.P)
			dist := d.Length()
			if dist == 0 {
				continue
			}
			d = d.Multiply(1.0 / dist)

			emitted := vpl.EmittedRadiance.Scale(maxf(0, vpl.N.Dot(d.Negate())) * core.InvPi)
			bsdfVal := its.Mesh.BSDF.Eval(its.UV, its.Wi, its.ToLocal(d))
			trans := v.transmittance(medium, its.P, vpl.Pos)
			contrib := trans.Mul(emitted).Mul(bsdfVal).Scale(normVPL / (dist * dist))
			li = li.Add(v.clampContribution(contrib))

		case VPLVolume:
			if smooth {
				continue
			}
			d := vpl.Pos.Subtract(its.P)
			dist := d.Length()
			if dist == 0 {
				continue
			}
			d = d.Multiply(1.0 / dist)

			emitted := vpl.Phase.Eval(vpl.DIn, d)
			bsdfVal := its.Mesh.BSDF.Eval(its.UV, its.Wi, its.ToLocal(d))
			trans := v.transmittance(medium, its.P, vpl.Pos)
			contrib := trans.Mul(emitted).Mul(bsdfVal).Mul(vpl.Radiance).Scale(normVPL / (dist * dist))
			li = li.Add(v.clampContribution(contrib))

		case VPLSurface:
			if smooth || !accel.Visible(vpl.Its.P, its.P) {
				continue
			}
			d := vpl.Its.P.Subtract(its.P)
			dist := d.Length()
			if dist == 0 {
				continue
			}
			d = d.Multiply(1.0 / dist)

			emitted := vpl.Its.Mesh.BSDF.Eval(vpl.Its.UV, vpl.Its.Wi, vpl.Its.ToLocal(d.Negate()))
			bsdfVal := its.Mesh.BSDF.Eval(its.UV, its.Wi, its.ToLocal(d))
			trans := v.transmittance(medium, its.P, vpl.Its.P)
			contrib := trans.Mul(emitted).Mul(bsdfVal).Mul(vpl.Radiance).Scale(normVPL / (dist * dist))
			li = li.Add(v.clampContribution(contrib))
		}
	}
	return li
}

// gatheringVolume sums the pool contributions at a medium scattering point
func (v *IntegratorVPL) gatheringVolume(medium *volume.HomogenousVolume, accel geometry.Acceleration,
	vpls []VPL, normVPL float64, dCam core.Vec3, pos core.Vec3, phase volume.PhaseFunction) core.Color {

	li := core.Color{}
	for i := range vpls {
		vpl := &vpls[i]
		switch vpl.Kind {
		case VPLEmitter:
			if !accel.Visible(vpl.Pos, pos) {
				continue
			}
			d := vpl.Pos.Subtract(pos)
			dist := d.Length()
			if dist == 0 {
				continue
			}
			d = d.Multiply(1.0 / dist)

			emitted := vpl.EmittedRadiance.Scale(maxf(0, vpl.N.Dot(d.Negate())) * core.InvPi)
			phaseVal := phase.Eval(dCam, d)
			trans := v.transmittance(medium, pos, vpl.Pos)
			contrib := trans.Mul(emitted).Mul(phaseVal).Scale(normVPL / (dist * dist))
			li = li.Add(v.clampContribution(contrib))

		case VPLVolume:
			// Volume-to-volume connections rely on transmittance alone
			d := vpl.Pos.Subtract(pos)
			dist := d.Length()
			if dist == 0 {
				continue
			}
			d = d.Multiply(1.0 / dist)

			emitted := vpl.Phase.Eval(vpl.DIn, d)
			phaseVal := phase.Eval(dCam, d)
			trans := v.transmittance(medium, pos, vpl.Pos)
			contrib := trans.Mul(emitted).Mul(phaseVal).Mul(vpl.Radiance).Scale(normVPL / (dist * dist))
			li = li.Add(v.clampContribution(contrib))

		case VPLSurface:
			if !accel.Visible(vpl.Its.P, pos) {
				continue
			}
			d := vpl.Its.P.Subtract(pos)
			dist := d.Length()
			if dist == 0 {
				continue
			}
			d = d.Multiply(1.0 / dist)

			emitted := vpl.Its.Mesh.BSDF.Eval(vpl.Its.UV, vpl.Its.Wi, vpl.Its.ToLocal(d.Negate()))
			phaseVal := phase.Eval(dCam, d)
			trans := v.transmittance(medium, pos, vpl.Its.P)
			contrib := trans.Mul(emitted).Mul(phaseVal).Mul(vpl.Radiance).Scale(normVPL / (dist * dist))
			li = li.Add(v.clampContribution(contrib))
		}
	}
	return li
}

// computeVPLContrib gathers the pool for a single pixel sample
func (v *IntegratorVPL) computeVPLContrib(ix, iy int, accel geometry.Acceleration, sc *scene.Scene,
	sampler core.Sampler, vpls []VPL, normVPL float64) core.Color {

	pix := core.NewVec2(float64(ix)+sampler.Next(), float64(iy)+sampler.Next())
	ray := sc.Camera.Generate(pix)

	its := accel.Trace(ray)
	if its == nil {
		if sc.Volume == nil {
			return core.Color{}
		}
		// Sample a single scattering event along the unbounded ray. The
		// medium's own phase is not consulted here; an isotropic phase is
		// constructed at the sampled point.
		mrec := sc.Volume.Sample(ray, sampler.Next2D())
		if mrec.Exited {
			return core.Color{}
		}
		pos := ray.At(mrec.T)
		phase := volume.NewIsotropic()
		return v.gatheringVolume(sc.Volume, accel, vpls, normVPL, ray.Direction.Negate(), pos, phase).Mul(mrec.W)
	}

	if sc.Volume != nil {
		rayMed := ray
		rayMed.TFar = its.Dist
		mrec := sc.Volume.Sample(rayMed, sampler.Next2D())
		if !mrec.Exited {
			pos := ray.At(mrec.T)
			phase := volume.NewIsotropic()
			return v.gatheringVolume(sc.Volume, accel, vpls, normVPL, ray.Direction.Negate(), pos, phase).Mul(mrec.W)
		}
		return v.gatheringSurface(sc.Volume, accel, vpls, normVPL, its).Mul(mrec.W)
	}

	return v.gatheringSurface(nil, accel, vpls, normVPL, its)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
