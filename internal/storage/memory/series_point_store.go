package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sketchmatch/internal/domain"
	"sketchmatch/internal/storage"
)

// SeriesPointStore is an in-memory implementation of storage.SeriesPointStore.
type SeriesPointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SeriesPoint // keyed by (entity, period_key)
}

// NewSeriesPointStore creates a new in-memory series point store.
func NewSeriesPointStore() *SeriesPointStore {
	return &SeriesPointStore{
		data: make(map[string]*domain.SeriesPoint),
	}
}

// Compile-time interface check.
var _ storage.SeriesPointStore = (*SeriesPointStore)(nil)

// pointKey generates a unique key for a series point.
func pointKey(entity, periodKey string) string {
	return fmt.Sprintf("%s|%s", entity, periodKey)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (entity, period_key).
func (s *SeriesPointStore) InsertBulk(_ context.Context, points []*domain.SeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Entity == "" || p.PeriodKey == "" {
			return storage.ErrInvalidInput
		}
		key := pointKey(p.Entity, p.PeriodKey)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[pointKey(p.Entity, p.PeriodKey)] = &pointCopy
	}

	return nil
}

// GetAll retrieves all points, ordered by entity ASC, period_index ASC.
func (s *SeriesPointStore) GetAll(_ context.Context) ([]*domain.SeriesPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SeriesPoint, 0, len(s.data))
	for _, p := range s.data {
		pointCopy := *p
		result = append(result, &pointCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Entity != result[j].Entity {
			return result[i].Entity < result[j].Entity
		}
		return result[i].PeriodIndex < result[j].PeriodIndex
	})

	return result, nil
}

// GetByEntity retrieves all points for an entity, ordered by period_index ASC.
func (s *SeriesPointStore) GetByEntity(_ context.Context, entity string) ([]*domain.SeriesPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SeriesPoint
	for _, p := range s.data {
		if p.Entity == entity {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PeriodIndex < result[j].PeriodIndex
	})

	return result, nil
}

// DeleteAll removes every point.
func (s *SeriesPointStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*domain.SeriesPoint)
	return nil
}
