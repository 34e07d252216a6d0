// Package ingestion turns raw sales transactions into the aligned per-entity
// monthly series the search engine runs against. It owns CSV parsing, the
// append-only record ingest, and the corpus preparation step.
package ingestion

import (
	"fmt"
	"sort"
	"time"

	"sketchmatch/internal/domain"
)

// periodKey returns the month bucket of a timestamp, e.g. "2024-03".
// Lexical order of period keys is chronological order.
func periodKey(orderDateMs int64) string {
	t := time.UnixMilli(orderDateMs).UTC()
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// Prepare builds the aligned corpus from raw records: the corpus-wide period
// axis in chronological order, and one zero-filled series per entity with
// value = sum of quantity*unitPrice per period and a precomputed total.
// A record's category labels its entity; the first seen wins. Entity order
// follows first appearance in the record stream, which stores return in
// order-date order; that is the corpus insertion order used for ranking
// tie-breaks.
func Prepare(records []*domain.SalesRecord) ([]*domain.TimeSeries, []string) {
	if len(records) == 0 {
		return nil, nil
	}

	// Period axis across the whole record set.
	periodSet := make(map[string]struct{})
	for _, r := range records {
		periodSet[periodKey(r.OrderDate)] = struct{}{}
	}
	periodKeys := make([]string, 0, len(periodSet))
	for k := range periodSet {
		periodKeys = append(periodKeys, k)
	}
	sort.Strings(periodKeys)

	periodIndex := make(map[string]int, len(periodKeys))
	for i, k := range periodKeys {
		periodIndex[k] = i
	}

	// Per-entity aggregation, preserving first-appearance order.
	var entities []string
	byEntity := make(map[string]*domain.TimeSeries)
	for _, r := range records {
		s, ok := byEntity[r.Entity]
		if !ok {
			s = &domain.TimeSeries{
				Entity:   r.Entity,
				Category: r.Category,
				Values:   make([]float64, len(periodKeys)),
			}
			byEntity[r.Entity] = s
			entities = append(entities, r.Entity)
		}
		amount := r.Amount()
		s.Values[periodIndex[periodKey(r.OrderDate)]] += amount
		s.Total += amount
	}

	series := make([]*domain.TimeSeries, 0, len(entities))
	for _, e := range entities {
		series = append(series, byEntity[e])
	}

	return series, periodKeys
}

// PointsFromSeries flattens prepared series onto the period axis for
// materialization in a SeriesPointStore. Zero-valued periods are kept so the
// stored form stays aligned.
func PointsFromSeries(series []*domain.TimeSeries, periodKeys []string) []*domain.SeriesPoint {
	var points []*domain.SeriesPoint
	for _, s := range series {
		for i, v := range s.Values {
			points = append(points, &domain.SeriesPoint{
				Entity:      s.Entity,
				Category:    s.Category,
				PeriodKey:   periodKeys[i],
				PeriodIndex: i,
				Value:       v,
			})
		}
	}
	return points
}

// SeriesFromPoints rebuilds aligned series from stored points. The period
// axis is recovered from the distinct period keys; a point whose stored
// index disagrees with the recovered axis indicates an upstream bug and is
// reported with its entity key.
func SeriesFromPoints(points []*domain.SeriesPoint) ([]*domain.TimeSeries, []string, error) {
	if len(points) == 0 {
		return nil, nil, nil
	}

	periodSet := make(map[string]struct{})
	for _, p := range points {
		periodSet[p.PeriodKey] = struct{}{}
	}
	periodKeys := make([]string, 0, len(periodSet))
	for k := range periodSet {
		periodKeys = append(periodKeys, k)
	}
	sort.Strings(periodKeys)

	periodIndex := make(map[string]int, len(periodKeys))
	for i, k := range periodKeys {
		periodIndex[k] = i
	}

	var entities []string
	byEntity := make(map[string]*domain.TimeSeries)
	for _, p := range points {
		if idx := periodIndex[p.PeriodKey]; idx != p.PeriodIndex {
			return nil, nil, fmt.Errorf("series point for entity %q: period %q stored at index %d, axis says %d",
				p.Entity, p.PeriodKey, p.PeriodIndex, idx)
		}
		s, ok := byEntity[p.Entity]
		if !ok {
			s = &domain.TimeSeries{
				Entity:   p.Entity,
				Category: p.Category,
				Values:   make([]float64, len(periodKeys)),
			}
			byEntity[p.Entity] = s
			entities = append(entities, p.Entity)
		}
		s.Values[periodIndex[p.PeriodKey]] = p.Value
		s.Total += p.Value
	}

	series := make([]*domain.TimeSeries, 0, len(entities))
	for _, e := range entities {
		series = append(series, byEntity[e])
	}

	return series, periodKeys, nil
}
