package ingestion

import (
	"strings"
	"testing"
	"time"

	"sketchmatch/internal/domain"
)

func record(date string, entity, category string, quantity, unitPrice float64) *domain.SalesRecord {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return &domain.SalesRecord{
		RecordID:  date + "|" + entity,
		OrderDate: t.UnixMilli(),
		Entity:    entity,
		Category:  category,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
}

func TestPrepare_PeriodAxisSortedAndZeroFilled(t *testing.T) {
	records := []*domain.SalesRecord{
		record("2024-03-10", "Widget", "Hardware", 2, 5), // 10
		record("2024-01-05", "Widget", "Hardware", 1, 5), // 5
		record("2024-03-20", "Widget", "Hardware", 1, 10), // 10 more in 2024-03
	}

	series, periodKeys := Prepare(records)

	want := []string{"2024-01", "2024-03"}
	if len(periodKeys) != 2 || periodKeys[0] != want[0] || periodKeys[1] != want[1] {
		t.Fatalf("expected periods %v, got %v", want, periodKeys)
	}

	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	s := series[0]
	if s.Values[0] != 5 || s.Values[1] != 20 {
		t.Errorf("expected values [5 20], got %v", s.Values)
	}
	if s.Total != 25 {
		t.Errorf("expected total 25, got %f", s.Total)
	}
}

func TestPrepare_ZeroFillsMissingPeriods(t *testing.T) {
	records := []*domain.SalesRecord{
		record("2024-01-05", "Widget", "Hardware", 1, 5),
		record("2024-04-05", "Widget", "Hardware", 1, 5),
		record("2024-02-05", "Gadget", "Hardware", 1, 7),
	}

	series, periodKeys := Prepare(records)

	if len(periodKeys) != 3 {
		t.Fatalf("expected 3 periods, got %v", periodKeys)
	}

	// Widget has no 2024-02 sales; that period must be zero, not absent.
	widget := series[0]
	if len(widget.Values) != 3 {
		t.Fatalf("expected aligned series of 3 values, got %d", len(widget.Values))
	}
	if widget.Values[1] != 0 {
		t.Errorf("expected zero fill, got %f", widget.Values[1])
	}
}

func TestPrepare_EntityOrderFollowsFirstAppearance(t *testing.T) {
	records := []*domain.SalesRecord{
		record("2024-01-05", "Zebra", "Toys", 1, 1),
		record("2024-01-06", "Apple", "Food", 1, 1),
		record("2024-01-07", "Zebra", "Toys", 1, 1),
	}

	series, _ := Prepare(records)

	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	if series[0].Entity != "Zebra" || series[1].Entity != "Apple" {
		t.Errorf("expected first-appearance order, got %s then %s",
			series[0].Entity, series[1].Entity)
	}
}

func TestPrepare_FirstSeenCategoryWins(t *testing.T) {
	records := []*domain.SalesRecord{
		record("2024-01-05", "Widget", "Hardware", 1, 1),
		record("2024-02-05", "Widget", "Tools", 1, 1),
	}

	series, _ := Prepare(records)

	if series[0].Category != "Hardware" {
		t.Errorf("expected first-seen category Hardware, got %s", series[0].Category)
	}
}

func TestPrepare_Empty(t *testing.T) {
	series, periodKeys := Prepare(nil)
	if series != nil || periodKeys != nil {
		t.Errorf("expected nil outputs, got %v, %v", series, periodKeys)
	}
}

func TestPointsRoundTrip(t *testing.T) {
	records := []*domain.SalesRecord{
		record("2024-01-05", "Widget", "Hardware", 1, 5),
		record("2024-02-05", "Widget", "Hardware", 2, 5),
		record("2024-02-07", "Gadget", "Tools", 1, 3),
	}

	series, periodKeys := Prepare(records)
	points := PointsFromSeries(series, periodKeys)

	// One point per series per period, zeros included.
	if len(points) != len(series)*len(periodKeys) {
		t.Fatalf("expected %d points, got %d", len(series)*len(periodKeys), len(points))
	}

	rebuilt, rebuiltKeys, err := SeriesFromPoints(points)
	if err != nil {
		t.Fatal(err)
	}

	if len(rebuiltKeys) != len(periodKeys) {
		t.Fatalf("period axis changed: %v vs %v", rebuiltKeys, periodKeys)
	}
	if len(rebuilt) != len(series) {
		t.Fatalf("series count changed: %d vs %d", len(rebuilt), len(series))
	}
	for i := range series {
		if rebuilt[i].Entity != series[i].Entity {
			t.Errorf("series %d: entity %s vs %s", i, rebuilt[i].Entity, series[i].Entity)
		}
		if rebuilt[i].Total != series[i].Total {
			t.Errorf("series %d: total %f vs %f", i, rebuilt[i].Total, series[i].Total)
		}
		for j := range series[i].Values {
			if rebuilt[i].Values[j] != series[i].Values[j] {
				t.Errorf("series %d value %d: %f vs %f",
					i, j, rebuilt[i].Values[j], series[i].Values[j])
			}
		}
	}
}

func TestSeriesFromPoints_IndexMismatch(t *testing.T) {
	points := []*domain.SeriesPoint{
		{Entity: "Widget", Category: "Hardware", PeriodKey: "2024-01", PeriodIndex: 0, Value: 5},
		{Entity: "Widget", Category: "Hardware", PeriodKey: "2024-02", PeriodIndex: 5, Value: 7},
	}

	_, _, err := SeriesFromPoints(points)
	if err == nil {
		t.Fatal("expected error for index mismatch")
	}
	if !strings.Contains(err.Error(), "Widget") {
		t.Errorf("error does not name the entity: %v", err)
	}
}

func TestSeriesFromPoints_Empty(t *testing.T) {
	series, keys, err := SeriesFromPoints(nil)
	if err != nil {
		t.Fatal(err)
	}
	if series != nil || keys != nil {
		t.Errorf("expected nil outputs, got %v, %v", series, keys)
	}
}
