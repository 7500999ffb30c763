package material

import (
	"github.com/solas-render/solas/pkg/core"
)

// Mirror is a perfect specular reflector. It is a delta distribution:
// Eval is always zero and the sampled direction carries a discrete pdf.
type Mirror struct {
	Specular core.Color
}

// NewMirror creates a perfect mirror BSDF
func NewMirror(specular core.Color) *Mirror {
	return &Mirror{Specular: specular}
}

// Sample reflects wi about the shading normal
func (m *Mirror) Sample(_ *core.Vec2, wi core.Vec3, _ core.Vec2) (SampledDirection, bool) {
	if core.CosTheta(wi) <= 0 {
		return SampledDirection{}, false
	}

	return SampledDirection{
		D:      core.NewVec3(-wi.X, -wi.Y, wi.Z),
		Weight: m.Specular,
		PDF:    core.DiscretePDF(1.0),
	}, true
}

// Eval is zero: a specific direction pair has zero measure under a delta lobe
func (m *Mirror) Eval(_ *core.Vec2, _, _ core.Vec3) core.Color {
	return core.Color{}
}

// PDF is zero (tagged discrete) for any explicitly given direction
func (m *Mirror) PDF(_ *core.Vec2, _, _ core.Vec3) core.PDF {
	return core.DiscretePDF(0)
}

// IsSmooth returns true
func (m *Mirror) IsSmooth() bool {
	return true
}
