package domain

// Point is a real-valued 2D coordinate. The unit depends on context:
// screen pixels for a drawn stroke, (periodIndex, amplitude) for a series.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is the ordered sequence of pointer positions sampled during one
// continuous drag gesture, in the host's coordinate space. Immutable once
// the gesture ends.
type Stroke []Point

// Copy returns an independent copy of the stroke.
func (s Stroke) Copy() Stroke {
	out := make(Stroke, len(s))
	copy(out, s)
	return out
}
