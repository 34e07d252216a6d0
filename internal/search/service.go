// Package search orchestrates one freehand pattern search: the drawn stroke
// and every eligible corpus series are normalized and resampled to a shared
// fixed point count, scored with DTW, and ranked ascending by distance.
package search

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"sketchmatch/internal/corpus"
	"sketchmatch/internal/domain"
	"sketchmatch/internal/dtw"
	"sketchmatch/internal/geometry"
)

// Defaults for the recognized configuration surface.
const (
	DefaultResamplePoints = 20
	DefaultTopK           = 10
	DefaultMinDrawPoints  = 5
)

// QualityScale converts DTW distance into the 0-100 match quality shown to
// users. A presentation constant, not a statistical guarantee.
const QualityScale = 20.0

// Config holds the engine parameters. Zero values fall back to defaults.
type Config struct {
	// ResamplePoints is the fixed point count N both curves are resampled to.
	ResamplePoints int
	// TopK truncates the ranked result list.
	TopK int
	// MinDrawPoints is the minimum stroke length for a search to run at all.
	MinDrawPoints int
	// MinSupportPeriods overrides the minimum-support rule when > 0;
	// 0 keeps the default rule min(5, periodCount/2).
	MinSupportPeriods int
	// Workers bounds the per-series scoring fan-out. 0 means NumCPU.
	Workers int
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.ResamplePoints <= 0 {
		c.ResamplePoints = DefaultResamplePoints
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.MinDrawPoints <= 0 {
		c.MinDrawPoints = DefaultMinDrawPoints
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}

// Service runs pattern searches against a corpus index. Methods are pure:
// no shared mutable state, safe for concurrent use.
type Service struct {
	cfg Config
}

// NewService creates a Service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Search runs one search of the drawn stroke against the corpus.
//
// A stroke below the minimum draw length, a nil index, or a corpus left
// empty by the category and support filters all return an empty result and
// no error; those are steady-state outcomes, not faults. The only error
// condition is context cancellation during scoring.
//
// The per-series scoring is independent and fans out across a bounded worker
// pool; ranking waits for every started unit of work. Results are sorted
// ascending by DTW distance with ties broken by corpus insertion order, then
// truncated to top-K. Neither the corpus nor the stroke is mutated.
func (s *Service) Search(ctx context.Context, ix *corpus.Index, stroke domain.Stroke, category string) (domain.RankedMatches, error) {
	if len(stroke) < s.cfg.MinDrawPoints {
		return domain.RankedMatches{}, nil
	}
	if ix == nil {
		return domain.RankedMatches{}, nil
	}

	eligible := ix.Eligible(category, s.cfg.MinSupportPeriods)
	if len(eligible) == 0 {
		return domain.RankedMatches{}, nil
	}

	// Normalize and resample the stroke once. Screen-space mode: pixel Y
	// grows downward, so it is inverted here.
	strokeCurve := geometry.Resample(geometry.Normalize(stroke, geometry.ModeScreen), s.cfg.ResamplePoints)

	distances := make([]float64, len(eligible))
	if err := s.scoreAll(ctx, strokeCurve, eligible, distances); err != nil {
		return nil, err
	}

	// Rank by distance ascending. SliceStable keeps corpus insertion order
	// for equal distances.
	order := make([]int, len(eligible))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	k := s.cfg.TopK
	if k > len(order) {
		k = len(order)
	}

	matches := make(domain.RankedMatches, 0, k)
	for _, idx := range order[:k] {
		matches = append(matches, domain.MatchResult{
			Entity:       eligible[idx].Entity,
			Category:     eligible[idx].Category,
			Total:        eligible[idx].Total,
			DTWDistance:  distances[idx],
			MatchQuality: quality(distances[idx]),
			Series:       eligible[idx],
		})
	}

	return matches, nil
}

// scoreAll computes the DTW distance of every eligible series against the
// resampled stroke, writing distances[i] for eligible[i]. Series are claimed
// from a shared index channel; the join waits for all workers.
func (s *Service) scoreAll(ctx context.Context, strokeCurve []domain.Point, eligible []*domain.TimeSeries, distances []float64) error {
	workers := s.cfg.Workers
	if workers > len(eligible) {
		workers = len(eligible)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				seriesCurve := geometry.Resample(geometry.NormalizeValues(eligible[i].Values), s.cfg.ResamplePoints)
				distances[i] = dtw.Score(strokeCurve, seriesCurve)
			}
		}()
	}

	var err error
feed:
	for i := range eligible {
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return err
}

// quality maps a DTW distance onto the 0-100 match quality percentage.
func quality(distance float64) float64 {
	q := 100 - distance*QualityScale
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}
