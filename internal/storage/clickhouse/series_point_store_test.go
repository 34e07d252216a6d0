package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchmatch/internal/domain"
	"sketchmatch/internal/storage"
)

func testPoint(entity, periodKey string, index int, value float64) *domain.SeriesPoint {
	return &domain.SeriesPoint{
		Entity:      entity,
		Category:    "Hardware",
		PeriodKey:   periodKey,
		PeriodIndex: index,
		Value:       value,
	}
}

func TestSeriesPointStore_InsertBulkAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSeriesPointStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op.
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	err = store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("Widget", "2024-02", 1, 20),
		testPoint("Widget", "2024-01", 0, 10),
		testPoint("Gadget", "2024-01", 0, 5),
	})
	require.NoError(t, err)

	points, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// entity ASC, period_index ASC
	assert.Equal(t, "Gadget", points[0].Entity)
	assert.Equal(t, "Widget", points[1].Entity)
	assert.Equal(t, 0, points[1].PeriodIndex)
	assert.Equal(t, 1, points[2].PeriodIndex)

	got := points[1]
	assert.Equal(t, "Hardware", got.Category)
	assert.Equal(t, "2024-01", got.PeriodKey)
	assert.Equal(t, 10.0, got.Value)
}

func TestSeriesPointStore_DuplicateDetection(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSeriesPointStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("Widget", "2024-01", 0, 10),
	})
	require.NoError(t, err)

	// Duplicate against an existing row.
	err = store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("Widget", "2024-01", 0, 99),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Intra-batch duplicate.
	err = store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("Gadget", "2024-01", 0, 1),
		testPoint("Gadget", "2024-01", 0, 2),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The existing row is untouched.
	points, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 10.0, points[0].Value)
}

func TestSeriesPointStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSeriesPointStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.SeriesPoint{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("", "2024-01", 0, 1),
	})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSeriesPointStore_GetByEntity(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSeriesPointStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("Widget", "2024-03", 2, 30),
		testPoint("Widget", "2024-01", 0, 10),
		testPoint("Gadget", "2024-01", 0, 5),
	})
	require.NoError(t, err)

	points, err := store.GetByEntity(ctx, "Widget")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 0, points[0].PeriodIndex)
	assert.Equal(t, 2, points[1].PeriodIndex)

	points, err = store.GetByEntity(ctx, "Unknown")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestSeriesPointStore_DeleteAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSeriesPointStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("Widget", "2024-01", 0, 10),
		testPoint("Gadget", "2024-01", 0, 5),
	})
	require.NoError(t, err)

	err = store.DeleteAll(ctx)
	require.NoError(t, err)

	points, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, points)

	// The store accepts the same keys again after a wipe.
	err = store.InsertBulk(ctx, []*domain.SeriesPoint{
		testPoint("Widget", "2024-01", 0, 10),
	})
	assert.NoError(t, err)
}
