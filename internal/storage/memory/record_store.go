package memory

import (
	"context"
	"sort"
	"sync"

	"sketchmatch/internal/domain"
	"sketchmatch/internal/storage"
)

// RecordStore is an in-memory implementation of storage.RecordStore.
type RecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SalesRecord // keyed by record_id
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		data: make(map[string]*domain.SalesRecord),
	}
}

// Compile-time interface check.
var _ storage.RecordStore = (*RecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
func (s *RecordStore) Insert(_ context.Context, r *domain.SalesRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RecordID]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := *r
	s.data[r.RecordID] = &recordCopy
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *RecordStore) InsertBulk(_ context.Context, records []*domain.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.RecordID] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		recordCopy := *r
		s.data[r.RecordID] = &recordCopy
	}

	return nil
}

// GetAll retrieves all records, ordered by order_date ASC, record_id ASC.
func (s *RecordStore) GetAll(_ context.Context) ([]*domain.SalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SalesRecord, 0, len(s.data))
	for _, r := range s.data {
		recordCopy := *r
		result = append(result, &recordCopy)
	}

	sortRecords(result)
	return result, nil
}

// GetByCategory retrieves records for a category, ordered by order_date ASC, record_id ASC.
func (s *RecordStore) GetByCategory(_ context.Context, category string) ([]*domain.SalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SalesRecord
	for _, r := range s.data {
		if r.Category == category {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sortRecords(result)
	return result, nil
}

// CountAll returns the total record count.
func (s *RecordStore) CountAll(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

// sortRecords orders records by order_date ASC, record_id ASC.
func sortRecords(records []*domain.SalesRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].OrderDate != records[j].OrderDate {
			return records[i].OrderDate < records[j].OrderDate
		}
		return records[i].RecordID < records[j].RecordID
	})
}
