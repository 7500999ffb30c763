package core

import "sort"

// Distribution1D is a discrete distribution built from unnormalised weights,
// sampled by inverting its CDF. Used for emitter selection by flux.
type Distribution1D struct {
	cdf           []float64
	normalization float64
}

// NewDistribution1D builds a distribution from the given weights. All
// weights must be non-negative; a distribution with zero total weight has
// no valid samples.
func NewDistribution1D(weights []float64) Distribution1D {
	cdf := make([]float64, 0, len(weights)+1)
	cur := 0.0
	for _, w := range weights {
		cdf = append(cdf, cur)
		cur += w
	}
	cdf = append(cdf, cur)

	if cur > 0 {
		for i := range cdf {
			cdf[i] /= cur
		}
	}

	return Distribution1D{cdf: cdf, normalization: cur}
}

// Count returns the number of entries
func (d Distribution1D) Count() int {
	return len(d.cdf) - 1
}

// Normalization returns the total weight the distribution was built from
func (d Distribution1D) Normalization() float64 {
	return d.normalization
}

// Sample returns the index selected by a uniform value in [0,1)
func (d Distribution1D) Sample(u float64) int {
	// First index whose CDF entry exceeds u, minus one
	i := sort.SearchFloat64s(d.cdf, u)
	for i < len(d.cdf) && d.cdf[i] == u {
		i++
	}
	if i >= len(d.cdf) {
		return d.Count() - 1
	}
	return i - 1
}

// PDF returns the discrete probability of index i
func (d Distribution1D) PDF(i int) float64 {
	return d.cdf[i+1] - d.cdf[i]
}
