package geometry

import (
	"math"

	"sketchmatch/internal/domain"
)

// Resample redistributes a polyline to exactly n points spaced uniformly by
// arc length. The first and last output points are the exact first and last
// input points, which guarantees endpoint fidelity regardless of step
// rounding. Inputs of at most one point are returned unchanged.
// Requires n >= 2 for multi-point inputs.
func Resample(curve []domain.Point, n int) []domain.Point {
	if len(curve) <= 1 {
		out := make([]domain.Point, len(curve))
		copy(out, curve)
		return out
	}

	total := pathLength(curve)
	if total == 0 {
		// All points coincide: n copies of the same point.
		out := make([]domain.Point, n)
		for i := range out {
			out[i] = curve[0]
		}
		return out
	}

	step := total / float64(n-1)

	out := make([]domain.Point, 0, n)
	out = append(out, curve[0])

	accumulated := 0.0
	seg := 1 // index of the segment end point in curve
	for i := 1; i <= n-2; i++ {
		target := float64(i) * step

		// Advance along the polyline until the segment containing the
		// target arc length is found.
		for seg < len(curve) {
			d := dist(curve[seg-1], curve[seg])
			if accumulated+d >= target || seg == len(curve)-1 {
				t := 0.0
				if d > 0 {
					t = (target - accumulated) / d
				}
				if t > 1 {
					t = 1
				}
				out = append(out, domain.Point{
					X: curve[seg-1].X + t*(curve[seg].X-curve[seg-1].X),
					Y: curve[seg-1].Y + t*(curve[seg].Y-curve[seg-1].Y),
				})
				break
			}
			accumulated += d
			seg++
		}
	}

	out = append(out, curve[len(curve)-1])
	return out
}

// pathLength returns the total polyline length.
func pathLength(curve []domain.Point) float64 {
	total := 0.0
	for i := 1; i < len(curve); i++ {
		total += dist(curve[i-1], curve[i])
	}
	return total
}

// dist returns the Euclidean distance between two points.
func dist(a, b domain.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
