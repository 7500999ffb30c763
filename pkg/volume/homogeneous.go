package volume

import (
	"math"

	"github.com/solas-render/solas/pkg/core"
)

// HomogenousVolume is a medium with constant scattering coefficients
// filling the whole scene. σ_t = σ_a + σ_s.
type HomogenousVolume struct {
	SigmaA float64
	SigmaS float64
	SigmaT float64
	Phase  PhaseFunction
}

// NewHomogenousVolume creates a homogeneous medium from absorption and
// scattering coefficients
func NewHomogenousVolume(sigmaA, sigmaS float64) *HomogenousVolume {
	return &HomogenousVolume{
		SigmaA: sigmaA,
		SigmaS: sigmaS,
		SigmaT: sigmaA + sigmaS,
		Phase:  NewIsotropic(),
	}
}

// MediumRecord is the outcome of distance sampling along a ray segment
type MediumRecord struct {
	// Sampled scattering distance along the ray (valid when !Exited)
	T float64
	// Monte Carlo weight for the sampled event
	W core.Color
	// True when the sample passed beyond the segment without scattering
	Exited bool
}

// Sample draws a scattering distance along the ray using the exponential
// free-flight distribution. When the sampled distance exceeds ray.TFar the
// record is marked exited and the weight accounts for passing through.
func (m *HomogenousVolume) Sample(ray core.Ray, u core.Vec2) MediumRecord {
	if m.SigmaT <= 0 {
		return MediumRecord{Exited: true, W: core.ColorOne()}
	}

	t := -math.Log(1.0-u.X) / m.SigmaT
	if t < ray.TFar-ray.TNear {
		// Scattering event: pdf = σ_t·e^{-σ_t·t}, contribution carries
		// σ_s·e^{-σ_t·t}, so the weight is the single-scattering albedo
		return MediumRecord{
			T: ray.TNear + t,
			W: core.ColorValue(float32(m.SigmaS / m.SigmaT)),
		}
	}

	// Passed through: pdf = e^{-σ_t·tfar}, transmittance cancels exactly
	return MediumRecord{Exited: true, W: core.ColorOne()}
}

// Transmittance returns exp(−σ_t · segment length) for the ray's valid range
func (m *HomogenousVolume) Transmittance(ray core.Ray) core.Color {
	length := ray.TFar - ray.TNear
	if math.IsInf(length, 1) {
		return core.Color{}
	}
	return core.ColorValue(float32(math.Exp(-m.SigmaT * length)))
}

// TransmittanceBetween returns the transmittance along the segment p1→p2
func (m *HomogenousVolume) TransmittanceBetween(p1, p2 core.Vec3) core.Color {
	dist := p2.Subtract(p1).Length()
	return core.ColorValue(float32(math.Exp(-m.SigmaT * dist)))
}
