package integrator

import (
	"github.com/solas-render/solas/pkg/core"
)

// BufferCollection is a block of named pixel buffers. Integrators render
// into per-tile collections which the orchestrator accumulates into a
// frame-sized one in a single serial pass.
type BufferCollection struct {
	// Position of the block inside the frame, in pixels
	X, Y int
	// Block dimensions in pixels
	Width, Height int

	names   []string
	buffers map[string][]core.Color
}

// NewBufferCollection creates a zeroed block with the given named buffers
func NewBufferCollection(x, y, width, height int, names []string) *BufferCollection {
	buffers := make(map[string][]core.Color, len(names))
	for _, name := range names {
		buffers[name] = make([]core.Color, width*height)
	}
	return &BufferCollection{
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		names:   append([]string(nil), names...),
		buffers: buffers,
	}
}

// Names returns the buffer names
func (b *BufferCollection) Names() []string {
	return b.names
}

// Accumulate adds a color at block-local coordinates
func (b *BufferCollection) Accumulate(x, y int, c core.Color, name string) {
	buf := b.buffers[name]
	idx := y*b.Width + x
	buf[idx] = buf[idx].Add(c)
}

// AccumulateSafe adds a color at block-local coordinates, ignoring
// out-of-bounds positions. Gradient splats at block borders land here.
func (b *BufferCollection) AccumulateSafe(x, y int, c core.Color, name string) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Accumulate(x, y, c, name)
}

// Pixel returns the value at block-local coordinates
func (b *BufferCollection) Pixel(x, y int, name string) core.Color {
	return b.buffers[name][y*b.Width+x]
}

// Scale multiplies every buffer by a factor
func (b *BufferCollection) Scale(v float64) {
	for _, name := range b.names {
		b.ScaleBuffer(v, name)
	}
}

// ScaleBuffer multiplies one named buffer by a factor
func (b *BufferCollection) ScaleBuffer(v float64, name string) {
	buf := b.buffers[name]
	for i := range buf {
		buf[i] = buf[i].Scale(v)
	}
}

// AccumulateCollection adds another block into this one at the block's
// frame position. Buffers missing on either side are skipped.
func (b *BufferCollection) AccumulateCollection(o *BufferCollection) {
	for _, name := range o.names {
		dst, ok := b.buffers[name]
		if !ok {
			continue
		}
		src := o.buffers[name]
		for y := 0; y < o.Height; y++ {
			for x := 0; x < o.Width; x++ {
				fx := o.X - b.X + x
				fy := o.Y - b.Y + y
				if fx < 0 || fy < 0 || fx >= b.Width || fy >= b.Height {
					continue
				}
				idx := fy*b.Width + fx
				dst[idx] = dst[idx].Add(src[y*o.Width+x])
			}
		}
	}
}

// Average returns the mean color of one buffer
func (b *BufferCollection) Average(name string) core.Color {
	buf := b.buffers[name]
	if len(buf) == 0 {
		return core.Color{}
	}
	sum := core.Color{}
	for _, c := range buf {
		sum = sum.Add(c)
	}
	return sum.Div(float64(len(buf)))
}
