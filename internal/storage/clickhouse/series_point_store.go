package clickhouse

import (
	"context"
	"fmt"

	"sketchmatch/internal/domain"
	"sketchmatch/internal/storage"
)

// SeriesPointStore implements storage.SeriesPointStore using ClickHouse.
type SeriesPointStore struct {
	conn *Conn
}

// NewSeriesPointStore creates a new SeriesPointStore.
func NewSeriesPointStore(conn *Conn) *SeriesPointStore {
	return &SeriesPointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SeriesPointStore = (*SeriesPointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (entity, period_key).
// ClickHouse MergeTree does not enforce uniqueness at insert time, so
// duplicates are checked explicitly before the batch is sent.
func (s *SeriesPointStore) InsertBulk(ctx context.Context, points []*domain.SeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		entity    string
		periodKey string
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Entity == "" || p.PeriodKey == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Entity, p.PeriodKey}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.Entity, p.PeriodKey)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO series_points (
			entity, category, period_key, period_index, value
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Entity, p.Category, p.PeriodKey, uint32(p.PeriodIndex), p.Value,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// exists checks whether a point with the given key is already stored.
func (s *SeriesPointStore) exists(ctx context.Context, entity, periodKey string) (bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM series_points WHERE entity = ? AND period_key = ?
	`, entity, periodKey)

	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAll retrieves all points, ordered by entity ASC, period_index ASC.
func (s *SeriesPointStore) GetAll(ctx context.Context) ([]*domain.SeriesPoint, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT entity, category, period_key, period_index, value
		FROM series_points
		ORDER BY entity ASC, period_index ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("get all series points: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// GetByEntity retrieves all points for an entity, ordered by period_index ASC.
func (s *SeriesPointStore) GetByEntity(ctx context.Context, entity string) ([]*domain.SeriesPoint, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT entity, category, period_key, period_index, value
		FROM series_points
		WHERE entity = ?
		ORDER BY period_index ASC
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("get series points by entity: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// DeleteAll removes every point.
func (s *SeriesPointStore) DeleteAll(ctx context.Context) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE series_points`); err != nil {
		return fmt.Errorf("truncate series_points: %w", err)
	}
	return nil
}

// chRows is the subset of driver.Rows used by scanPoints.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanPoints scans rows into a slice of SeriesPoint.
func scanPoints(rows chRows) ([]*domain.SeriesPoint, error) {
	var points []*domain.SeriesPoint

	for rows.Next() {
		var p domain.SeriesPoint
		var periodIndex uint32

		err := rows.Scan(
			&p.Entity,
			&p.Category,
			&p.PeriodKey,
			&periodIndex,
			&p.Value,
		)
		if err != nil {
			return nil, fmt.Errorf("scan series point row: %w", err)
		}

		p.PeriodIndex = int(periodIndex)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series point rows: %w", err)
	}

	return points, nil
}
