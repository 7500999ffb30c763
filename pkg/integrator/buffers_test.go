package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solas-render/solas/pkg/core"
)

func TestBufferAccumulateAndScale(t *testing.T) {
	b := NewBufferCollection(0, 0, 4, 4, []string{BufferPrimal, BufferGradientX})

	b.Accumulate(1, 2, core.ColorValue(2.0), BufferPrimal)
	b.Accumulate(1, 2, core.ColorValue(1.0), BufferPrimal)
	assert.InDelta(t, 3.0, float64(b.Pixel(1, 2, BufferPrimal).R), 1e-6)

	b.ScaleBuffer(0.5, BufferPrimal)
	assert.InDelta(t, 1.5, float64(b.Pixel(1, 2, BufferPrimal).R), 1e-6)
	assert.True(t, b.Pixel(0, 0, BufferGradientX).IsZero())
}

func TestBufferAccumulateSafe(t *testing.T) {
	b := NewBufferCollection(0, 0, 2, 2, []string{BufferPrimal})

	// Out-of-bounds splats are dropped silently
	b.AccumulateSafe(-1, 0, core.ColorOne(), BufferPrimal)
	b.AccumulateSafe(0, 2, core.ColorOne(), BufferPrimal)
	b.AccumulateSafe(1, 1, core.ColorOne(), BufferPrimal)

	assert.True(t, b.Pixel(0, 0, BufferPrimal).IsZero())
	assert.InDelta(t, 1.0, float64(b.Pixel(1, 1, BufferPrimal).R), 1e-6)
}

func TestBufferBlockAccumulation(t *testing.T) {
	image := NewBufferCollection(0, 0, 8, 8, []string{BufferPrimal})

	block := NewBufferCollection(4, 2, 2, 2, []string{BufferPrimal})
	block.Accumulate(0, 0, core.ColorValue(1.0), BufferPrimal)
	block.Accumulate(1, 1, core.ColorValue(2.0), BufferPrimal)

	image.AccumulateCollection(block)
	assert.InDelta(t, 1.0, float64(image.Pixel(4, 2, BufferPrimal).R), 1e-6)
	assert.InDelta(t, 2.0, float64(image.Pixel(5, 3, BufferPrimal).R), 1e-6)
	assert.True(t, image.Pixel(0, 0, BufferPrimal).IsZero())
}

func TestBufferAverage(t *testing.T) {
	b := NewBufferCollection(0, 0, 2, 1, []string{BufferPrimal})
	b.Accumulate(0, 0, core.ColorValue(1.0), BufferPrimal)
	b.Accumulate(1, 0, core.ColorValue(3.0), BufferPrimal)

	avg := b.Average(BufferPrimal)
	assert.InDelta(t, 2.0, float64(avg.R), 1e-6)
}

func TestTileBounds(t *testing.T) {
	tiles := tileBounds(33, 16, 16)
	assert.Len(t, tiles, 3)

	// Last column tile is clipped
	last := tiles[2]
	assert.Equal(t, 32, last.x0)
	assert.Equal(t, 33, last.x1)
	assert.Equal(t, 16, last.y1)
}
