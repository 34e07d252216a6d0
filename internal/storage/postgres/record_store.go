package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sketchmatch/internal/domain"
	"sketchmatch/internal/storage"
)

// RecordStore implements storage.RecordStore using PostgreSQL.
type RecordStore struct {
	pool *Pool
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(pool *Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecordStore = (*RecordStore)(nil)

const recordColumns = "record_id, order_date, entity, category, quantity, unit_price, profit, created_at"

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
func (s *RecordStore) Insert(ctx context.Context, r *domain.SalesRecord) error {
	query := `
		INSERT INTO sales_records (
			record_id, order_date, entity, category, quantity, unit_price, profit
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RecordID,
		r.OrderDate,
		r.Entity,
		r.Category,
		r.Quantity,
		r.UnitPrice,
		r.Profit,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *RecordStore) InsertBulk(ctx context.Context, records []*domain.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sales_records (
			record_id, order_date, entity, category, quantity, unit_price, profit
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, r := range records {
		_, err := tx.Exec(ctx, query,
			r.RecordID,
			r.OrderDate,
			r.Entity,
			r.Category,
			r.Quantity,
			r.UnitPrice,
			r.Profit,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert record in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk insert: %w", err)
	}
	return nil
}

// GetAll retrieves all records, ordered by order_date ASC, record_id ASC.
func (s *RecordStore) GetAll(ctx context.Context) ([]*domain.SalesRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales_records
		ORDER BY order_date ASC, record_id ASC
	`, recordColumns)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByCategory retrieves records for a category, ordered by order_date ASC, record_id ASC.
func (s *RecordStore) GetByCategory(ctx context.Context, category string) ([]*domain.SalesRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales_records
		WHERE category = $1
		ORDER BY order_date ASC, record_id ASC
	`, recordColumns)

	rows, err := s.pool.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("get records by category: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CountAll returns the total record count.
func (s *RecordStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// scanRecords scans multiple rows into a slice of SalesRecord.
func scanRecords(rows pgx.Rows) ([]*domain.SalesRecord, error) {
	var records []*domain.SalesRecord

	for rows.Next() {
		var r domain.SalesRecord
		err := rows.Scan(
			&r.RecordID,
			&r.OrderDate,
			&r.Entity,
			&r.Category,
			&r.Quantity,
			&r.UnitPrice,
			&r.Profit,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}

	return records, nil
}
