// Package geometry maps drawn strokes and value series into a shared
// unit-square parametrization so shapes can be compared independent of
// absolute scale and temporal resolution.
package geometry

import "sketchmatch/internal/domain"

// Mode selects the coordinate convention of the input.
type Mode int

const (
	// ModeScreen treats input as screen-space pixels, where increasing Y
	// points downward. Normalization inverts Y so that visually higher
	// points map to larger normalized Y.
	ModeScreen Mode = iota

	// ModeValues treats input as an already-upright value series
	// (periodIndex, amplitude). No Y inversion.
	ModeValues
)

// Normalize rescales a point sequence into the unit square.
// Each axis maps linearly onto [0,1]; a degenerate axis (max == min) maps
// every value to 0 instead of dividing by zero. A single-point input yields
// a single-point output; resampling handles that degeneracy downstream.
func Normalize(points []domain.Point, mode Mode) []domain.Point {
	if len(points) == 0 {
		return nil
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY

	out := make([]domain.Point, len(points))
	for i, p := range points {
		var nx, ny float64
		if rangeX > 0 {
			nx = (p.X - minX) / rangeX
		}
		if rangeY > 0 {
			if mode == ModeScreen {
				ny = (maxY - p.Y) / rangeY
			} else {
				ny = (p.Y - minY) / rangeY
			}
		}
		out[i] = domain.Point{X: nx, Y: ny}
	}

	return out
}

// NormalizeValues normalizes a value series as a curve: X is the period
// index, Y the amplitude. Convenience wrapper used by the search service.
func NormalizeValues(values []float64) []domain.Point {
	points := make([]domain.Point, len(values))
	for i, v := range values {
		points[i] = domain.Point{X: float64(i), Y: v}
	}
	return Normalize(points, ModeValues)
}
