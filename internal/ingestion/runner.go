package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sketchmatch/internal/domain"
	"sketchmatch/internal/storage"
)

// IngestResult summarizes one ingest run.
type IngestResult struct {
	Inserted int
	Skipped  int // duplicates of already-ingested records
}

// Runner ingests parsed records into a RecordStore.
type Runner struct {
	recordStore storage.RecordStore
	logger      *log.Logger
}

// NewRunner creates a new ingest runner. logger may be nil.
func NewRunner(recordStore storage.RecordStore, logger *log.Logger) *Runner {
	return &Runner{recordStore: recordStore, logger: logger}
}

// IngestRecords inserts records one by one. Duplicate record IDs are
// skipped and counted, not fatal: re-running an ingest over the same export
// is expected to be a no-op.
func (r *Runner) IngestRecords(ctx context.Context, records []*domain.SalesRecord) (*IngestResult, error) {
	result := &IngestResult{}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := r.recordStore.Insert(ctx, record)
		switch {
		case err == nil:
			result.Inserted++
		case errors.Is(err, storage.ErrDuplicateKey):
			result.Skipped++
		default:
			return result, fmt.Errorf("insert record %s: %w", record.RecordID, err)
		}
	}

	r.log("Ingested %d records (%d duplicates skipped)", result.Inserted, result.Skipped)
	return result, nil
}

// Materialize replaces the contents of a SeriesPointStore with the prepared
// corpus. The store is cleared first so the stored form always reflects one
// complete preparation run.
func (r *Runner) Materialize(ctx context.Context, pointStore storage.SeriesPointStore, series []*domain.TimeSeries, periodKeys []string) error {
	if err := pointStore.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear series points: %w", err)
	}

	points := PointsFromSeries(series, periodKeys)
	if err := pointStore.InsertBulk(ctx, points); err != nil {
		return fmt.Errorf("insert series points: %w", err)
	}

	r.log("Materialized %d series points (%d series, %d periods)", len(points), len(series), len(periodKeys))
	return nil
}

func (r *Runner) log(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
