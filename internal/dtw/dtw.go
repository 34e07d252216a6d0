// Package dtw computes Dynamic Time Warping distances between resampled
// curves. DTW is allowed to warp the X (time) axis of either curve, so the
// local cost uses only the Y (amplitude) component of each point.
package dtw

import (
	"math"

	"sketchmatch/internal/domain"
)

// Score computes the DTW distance between two resampled curves.
//
// It fills an (n+1)x(m+1) cumulative-cost table with dtw[0][0] = 0 and +Inf
// borders, using the recurrence
//
//	dtw[i][j] = |a[i-1].Y - b[j-1].Y| + min(dtw[i-1][j], dtw[i][j-1], dtw[i-1][j-1])
//
// and returns dtw[n][m]. Score(x, x) == 0, Score is non-negative, and
// Score(a, b) == Score(b, a). Empty inputs score +Inf (nothing aligns).
// Complexity is O(n*m); both curves are resampled to the same fixed count
// by the search service, so each comparison is O(N^2).
func Score(a, b []domain.Point) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	inf := math.Inf(1)
	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, m+1)
		for j := range dp[i] {
			dp[i][j] = inf
		}
	}
	dp[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := math.Abs(a[i-1].Y - b[j-1].Y)
			dp[i][j] = cost + min3(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
		}
	}

	return dp[n][m]
}

// min3 returns the minimum of three float64 values.
func min3(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
