package paths

import (
	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/scene"
)

type frontierEntry struct {
	id         VertexID
	throughput core.Color
	depth      int
}

// Generate materializes the path graph for a technique: starting from the
// technique's roots it expands breadth-first, applying each strategy once
// per vertex. Strategy order within a vertex is the technique's strategy
// list order, so random draws are deterministic given the sampler.
// Returns the roots.
func Generate(p *Path, accel geometry.Acceleration, sc *scene.Scene,
	emitters *scene.EmitterSampler, sampler core.Sampler, technique Technique) []RootVertex {

	roots := technique.Init(p, accel, sc, sampler, emitters)

	frontier := make([]frontierEntry, 0, len(roots))
	for _, root := range roots {
		frontier = append(frontier, frontierEntry{
			id:         root.ID,
			throughput: root.Throughput,
			depth:      1,
		})
	}

	for len(frontier) > 0 {
		entry := frontier[0]
		frontier = frontier[1:]

		if !technique.Expand(p.Vertex(entry.id), entry.depth) {
			continue
		}

		for _, strategy := range technique.Strategies(p.Vertex(entry.id)) {
			nid, throughput, ok := strategy.Sample(p, entry.id, accel, sc, entry.throughput, sampler, entry.depth)
			if ok {
				frontier = append(frontier, frontierEntry{
					id:         nid,
					throughput: throughput,
					depth:      entry.depth + 1,
				})
			}
		}
	}

	return roots
}
