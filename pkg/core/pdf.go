package core

// Measure identifies the measure a probability density is expressed in
type Measure int

const (
	MeasureSolidAngle Measure = iota
	MeasureArea
	MeasureDiscrete
)

// PDF is a probability density tagged with its measure. Operations keep the
// tag; mixing measures is a caller bug and is caught by the MIS combiner,
// which only sums solid-angle densities.
type PDF struct {
	Measure Measure
	V       float64
}

// SolidAnglePDF creates a density in solid-angle measure
func SolidAnglePDF(v float64) PDF {
	return PDF{Measure: MeasureSolidAngle, V: v}
}

// AreaPDF creates a density in area measure
func AreaPDF(v float64) PDF {
	return PDF{Measure: MeasureArea, V: v}
}

// DiscretePDF creates a discrete probability
func DiscretePDF(v float64) PDF {
	return PDF{Measure: MeasureDiscrete, V: v}
}

// Value returns the raw density regardless of measure
func (p PDF) Value() float64 {
	return p.V
}

// IsZero returns true for a zero density
func (p PDF) IsZero() bool {
	return p.V == 0
}

// Scale returns the density scaled by a positive factor, same measure
func (p PDF) Scale(f float64) PDF {
	return PDF{Measure: p.Measure, V: p.V * f}
}
