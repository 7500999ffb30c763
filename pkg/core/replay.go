package core

// ReplaySampler wraps an inner sampler with a tape of previously drawn
// values so a caller can rewind and re-consume the exact same sequence.
// The gradient-domain shift mapping relies on this: a shifted path replayed
// from the tape sees the same random decisions as the base path at every
// matching vertex depth, so correlated noise cancels in the differences.
type ReplaySampler struct {
	inner  Sampler
	tape   []float64
	cursor int
}

// NewReplaySampler wraps the given sampler with an empty tape
func NewReplaySampler(inner Sampler) *ReplaySampler {
	return &ReplaySampler{inner: inner}
}

// Next replays the value at the cursor when one exists, otherwise draws a
// fresh value from the inner sampler and appends it to the tape.
func (s *ReplaySampler) Next() float64 {
	if s.cursor < len(s.tape) {
		v := s.tape[s.cursor]
		s.cursor++
		return v
	}
	v := s.inner.Next()
	s.tape = append(s.tape, v)
	s.cursor++
	return v
}

// Next2D is two successive Next draws on the same tape
func (s *ReplaySampler) Next2D() Vec2 {
	v1 := s.Next()
	v2 := s.Next()
	return NewVec2(v1, v2)
}

// Raw draws from the inner sampler without touching the tape. Decisions
// that must not be replayed — the survival lottery on the base path — go
// through here; registering them would misalign every shift at depth > 1.
func (s *ReplaySampler) Raw() float64 {
	return s.inner.Next()
}

// Rewind resets the cursor without clearing the tape. A subsequent run that
// draws fewer values still sees the original numbers for the positions it
// consults.
func (s *ReplaySampler) Rewind() {
	s.cursor = 0
}

// TapeLen returns how many values have been recorded
func (s *ReplaySampler) TapeLen() int {
	return len(s.tape)
}
