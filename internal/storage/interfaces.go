package storage

import (
	"context"

	"sketchmatch/internal/domain"
)

// RecordStore provides access to sales_records storage.
type RecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
	Insert(ctx context.Context, r *domain.SalesRecord) error

	// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.SalesRecord) error

	// GetAll retrieves all records, ordered by order_date ASC, record_id ASC.
	GetAll(ctx context.Context) ([]*domain.SalesRecord, error)

	// GetByCategory retrieves records for a category, ordered by order_date ASC, record_id ASC.
	GetByCategory(ctx context.Context, category string) ([]*domain.SalesRecord, error)

	// CountAll returns the total record count.
	CountAll(ctx context.Context) (int64, error)
}

// SeriesPointStore provides access to prepared series_points storage.
type SeriesPointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (entity, period_key).
	InsertBulk(ctx context.Context, points []*domain.SeriesPoint) error

	// GetAll retrieves all points, ordered by entity ASC, period_index ASC.
	GetAll(ctx context.Context) ([]*domain.SeriesPoint, error)

	// GetByEntity retrieves all points for an entity, ordered by period_index ASC.
	GetByEntity(ctx context.Context, entity string) ([]*domain.SeriesPoint, error)

	// DeleteAll removes every point. Used before re-materializing a corpus.
	DeleteAll(ctx context.Context) error
}
