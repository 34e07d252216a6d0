// Package corpus holds the prepared per-entity time series and the read-side
// filters the search service runs against. An Index is built once per dataset
// load and is immutable afterward; it may be shared across concurrent
// searches without locking.
package corpus

import (
	"fmt"
	"sort"

	"sketchmatch/internal/domain"
)

// CategoryAll selects every category.
const CategoryAll = "All"

// defaultMinSupport caps the minimum-support rule: a series
// needs min(5, periodCount/2) non-zero periods to be searchable.
const defaultMinSupport = 5

// ContractViolationError indicates a series that breaks the corpus alignment
// contract. This is an upstream data-preparation bug, not an empty-result
// case, so index construction fails fast and names the offending entity.
type ContractViolationError struct {
	Entity string
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("corpus contract violation for entity %q: %s", e.Entity, e.Reason)
}

// Index is the searchable corpus: aligned series plus the corpus-wide period
// axis, in chronological order.
type Index struct {
	periodKeys []string
	series     []*domain.TimeSeries
}

// NewIndex builds an Index, validating that every series covers the shared
// period axis. Series order is preserved; it is the insertion order used for
// ranking tie-breaks.
func NewIndex(periodKeys []string, series []*domain.TimeSeries) (*Index, error) {
	for _, s := range series {
		if s == nil || s.Entity == "" {
			return nil, &ContractViolationError{Entity: "", Reason: "nil or unnamed series"}
		}
		if len(s.Values) != len(periodKeys) {
			return nil, &ContractViolationError{
				Entity: s.Entity,
				Reason: fmt.Sprintf("series covers %d periods, corpus has %d", len(s.Values), len(periodKeys)),
			}
		}
	}

	keys := make([]string, len(periodKeys))
	copy(keys, periodKeys)

	return &Index{periodKeys: keys, series: series}, nil
}

// PeriodKeys returns the corpus-wide period keys in chronological order.
func (ix *Index) PeriodKeys() []string {
	keys := make([]string, len(ix.periodKeys))
	copy(keys, ix.periodKeys)
	return keys
}

// PeriodCount returns the number of periods on the shared axis.
func (ix *Index) PeriodCount() int {
	return len(ix.periodKeys)
}

// Len returns the number of series in the corpus.
func (ix *Index) Len() int {
	return len(ix.series)
}

// FilterByCategory returns the series matching the category label.
// CategoryAll returns the full corpus. Order is insertion order.
func (ix *Index) FilterByCategory(category string) []*domain.TimeSeries {
	if category == CategoryAll || category == "" {
		return ix.series
	}
	var out []*domain.TimeSeries
	for _, s := range ix.series {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the distinct category labels, sorted.
func (ix *Index) Categories() []string {
	seen := make(map[string]struct{})
	for _, s := range ix.series {
		seen[s.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// MinSupport returns the minimum non-zero period count a series needs to be
// searchable. override > 0 replaces the default rule min(5, periodCount/2).
func (ix *Index) MinSupport(override int) int {
	if override > 0 {
		return override
	}
	threshold := len(ix.periodKeys) / 2
	if threshold > defaultMinSupport {
		threshold = defaultMinSupport
	}
	return threshold
}

// HasMinimumSupport reports whether a series has enough non-zero periods to
// be included in the searchable corpus. Suppresses sparse or noisy series
// from cluttering top-K results.
func (ix *Index) HasMinimumSupport(s *domain.TimeSeries, override int) bool {
	return s.NonZeroPeriods() >= ix.MinSupport(override)
}

// Eligible returns the series that pass both the category filter and the
// minimum-support filter, in insertion order.
func (ix *Index) Eligible(category string, minSupportOverride int) []*domain.TimeSeries {
	var out []*domain.TimeSeries
	for _, s := range ix.FilterByCategory(category) {
		if ix.HasMinimumSupport(s, minSupportOverride) {
			out = append(out, s)
		}
	}
	return out
}
