package renderer

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/integrator"
	"github.com/solas-render/solas/pkg/scene"
)

// Renderer orchestrates per-pixel integrators over parallel tiles. The
// scene, accelerator and (for VPL) light pool are shared read-only;
// samplers, paths and tile buffers are exclusive to their worker.
type Renderer struct {
	scene *scene.Scene
	accel geometry.Acceleration

	// degenerateSamples counts samples dropped for producing non-finite
	// colors; reported, never fatal
	degenerateSamples atomic.Int64
}

// NewRenderer creates a renderer for a scene and its accelerator
func NewRenderer(sc *scene.Scene, accel geometry.Acceleration) *Renderer {
	return &Renderer{scene: sc, accel: accel}
}

// DegenerateSamples returns how many samples were zeroed for non-finite values
func (r *Renderer) DegenerateSamples() int64 {
	return r.degenerateSamples.Load()
}

func (r *Renderer) workerCount() int {
	if n := r.scene.Config.NbThreads; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Render runs a whole-image integrator
func (r *Renderer) Render(integ integrator.Integrator) *integrator.BufferCollection {
	renderID := uuid.NewString()
	slog.Info("render start", "render", renderID, "kind", "whole-image")
	image := integ.Compute(r.accel, r.scene)
	slog.Info("render done", "render", renderID)
	return image
}

// RenderPixelIntegrator renders a per-pixel integrator into a primal buffer
func (r *Renderer) RenderPixelIntegrator(integ integrator.PixelIntegrator) *integrator.BufferCollection {
	cfg := r.scene.Config
	width, height := r.scene.Camera.Size()
	names := []string{integrator.BufferPrimal}
	renderID := uuid.NewString()

	tiles := NewTileGrid(width, height, cfg.TileSize)
	slog.Info("render start", "render", renderID, "kind", "pixel",
		"size", [2]int{width, height}, "tiles", len(tiles), "workers", r.workerCount())

	blocks := r.renderTiles(tiles, renderID, func(t Tile) *integrator.BufferCollection {
		block := integrator.NewBufferCollection(t.X0, t.Y0, t.X1-t.X0, t.Y1-t.Y0, names)
		for iy := t.Y0; iy < t.Y1; iy++ {
			for ix := t.X0; ix < t.X1; ix++ {
				sampler := core.NewPixelSampler(cfg.Seed, ix, iy)
				for s := 0; s < cfg.NbSamples; s++ {
					c := integ.ComputePixel(ix, iy, r.accel, r.scene, sampler)
					if !c.IsFinite() {
						r.degenerateSamples.Add(1)
						c = core.Color{}
					}
					block.Accumulate(ix-t.X0, iy-t.Y0, c, integrator.BufferPrimal)
				}
			}
		}
		block.Scale(1.0 / float64(cfg.NbSamples))
		return block
	})

	return r.assemble(width, height, names, blocks, renderID)
}

// RenderGradientIntegrator renders a gradient integrator into the primal,
// very-direct and gradient buffers, applying the splatting rules for the
// four shift directions. Tile blocks carry a one-pixel apron so shift
// splats crossing a tile border still land.
func (r *Renderer) RenderGradientIntegrator(integ integrator.GradientIntegrator) *integrator.BufferCollection {
	cfg := r.scene.Config
	width, height := r.scene.Camera.Size()
	names := []string{
		integrator.BufferPrimal,
		integrator.BufferVeryDirect,
		integrator.BufferGradientX,
		integrator.BufferGradientY,
	}
	renderID := uuid.NewString()

	tiles := NewTileGrid(width, height, cfg.TileSize)
	slog.Info("render start", "render", renderID, "kind", "gradient",
		"size", [2]int{width, height}, "tiles", len(tiles), "workers", r.workerCount())

	blocks := r.renderTiles(tiles, renderID, func(t Tile) *integrator.BufferCollection {
		bx0 := max(0, t.X0-1)
		by0 := max(0, t.Y0-1)
		bx1 := min(width, t.X1+1)
		by1 := min(height, t.Y1+1)
		block := integrator.NewBufferCollection(bx0, by0, bx1-bx0, by1-by0, names)

		for iy := t.Y0; iy < t.Y1; iy++ {
			for ix := t.X0; ix < t.X1; ix++ {
				sampler := core.NewPixelSampler(cfg.Seed, ix, iy)
				lx := ix - bx0
				ly := iy - by0
				for s := 0; s < cfg.NbSamples; s++ {
					c := integ.ComputePixelGradient(ix, iy, r.accel, r.scene, sampler)
					r.splatGradient(block, lx, ly, c)
				}
			}
		}

		block.Scale(1.0 / float64(cfg.NbSamples))
		// The primal buffer received the base estimate plus the four
		// neighbour reuses; rescale to unit total weight
		block.ScaleBuffer(0.25, integrator.BufferPrimal)
		return block
	})

	return r.assemble(width, height, names, blocks, renderID)
}

// splatGradient accumulates one ColorGradient record at block-local (lx,ly)
func (r *Renderer) splatGradient(block *integrator.BufferCollection, lx, ly int, c integrator.ColorGradient) {
	block.Accumulate(lx, ly, c.Main, integrator.BufferPrimal)
	block.Accumulate(lx, ly, c.VeryDirect, integrator.BufferVeryDirect)

	for i, off := range integrator.GradientOrder {
		sx := lx + off[0]
		sy := ly + off[1]

		// Shift radiance reuses the primal buffer at the shifted pixel
		block.AccumulateSafe(sx, sy, c.Radiances[i], integrator.BufferPrimal)

		dir := integrator.GradientDirections[i]
		name := integrator.BufferGradientX
		if dir.Axis == integrator.GradientY {
			name = integrator.BufferGradientY
		}
		if dir.Sign > 0 {
			block.Accumulate(lx, ly, c.Gradients[i], name)
		} else {
			block.AccumulateSafe(sx, sy, c.Gradients[i].Negate(), name)
		}
	}
}

// renderTiles runs the worker pool: tiles are pulled from a channel in any
// order, each worker writes only its own block slots.
func (r *Renderer) renderTiles(tiles []Tile, renderID string, renderTile func(Tile) *integrator.BufferCollection) []*integrator.BufferCollection {
	blocks := make([]*integrator.BufferCollection, len(tiles))
	tasks := make(chan int, len(tiles))
	for i := range tiles {
		tasks <- i
	}
	close(tasks)

	progress := newProgressTracker(len(tiles), renderID)

	var wg sync.WaitGroup
	for w := 0; w < r.workerCount(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				blocks[idx] = renderTile(tiles[idx])
				progress.Inc()
			}
		}()
	}
	wg.Wait()

	return blocks
}

// assemble accumulates tile blocks into the frame in a single serial pass
func (r *Renderer) assemble(width, height int, names []string, blocks []*integrator.BufferCollection, renderID string) *integrator.BufferCollection {
	image := integrator.NewBufferCollection(0, 0, width, height, names)
	for _, block := range blocks {
		image.AccumulateCollection(block)
	}
	if n := r.degenerateSamples.Load(); n > 0 {
		slog.Warn("degenerate samples zeroed", "render", renderID, "count", n)
	}
	slog.Info("render done", "render", renderID)
	return image
}
