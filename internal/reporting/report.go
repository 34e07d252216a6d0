// Package reporting renders ranked pattern matches into human-facing
// markdown and CSV documents. Rendering of charts stays external; this is
// the text surface only.
package reporting

import (
	"time"

	"sketchmatch/internal/domain"
)

// Report is one search's render-ready summary.
type Report struct {
	GeneratedAt  time.Time
	Category     string // category filter applied ("All" for none)
	StrokePoints int    // raw stroke length
	CorpusSize   int    // series eligible after filtering
	PeriodCount  int    // periods on the corpus axis
	Matches      domain.RankedMatches
}

// NewReport assembles a Report from one search invocation.
func NewReport(category string, strokePoints, corpusSize, periodCount int, matches domain.RankedMatches) *Report {
	return &Report{
		GeneratedAt:  time.Now().UTC(),
		Category:     category,
		StrokePoints: strokePoints,
		CorpusSize:   corpusSize,
		PeriodCount:  periodCount,
		Matches:      matches,
	}
}
