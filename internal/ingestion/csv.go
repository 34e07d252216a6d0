package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sketchmatch/internal/domain"
	"sketchmatch/internal/idhash"
)

// Expected CSV header columns of a dashboard transaction export.
const (
	colOrderDate = "order_date"
	colEntity    = "product"
	colCategory  = "category"
	colQuantity  = "quantity"
	colUnitPrice = "unit_price"
	colProfit    = "profit"
)

// dateLayout is the order date format used by dashboard exports.
const dateLayout = "2006-01-02"

// ParseRecordsCSV reads a transactions CSV export into SalesRecords.
// The first row must be a header containing order_date, product, category,
// quantity, unit_price and profit columns (any order, extra columns are
// ignored). Rows that fail validation abort the parse with the line number.
func ParseRecordsCSV(r io.Reader) ([]*domain.SalesRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []*domain.SalesRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		record, err := parseRow(row, cols, line)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// columnIndexes maps required columns to their positions in the header.
type columnIndexes struct {
	orderDate int
	entity    int
	category  int
	quantity  int
	unitPrice int
	profit    int
}

// resolveColumns locates the required columns in the header row.
func resolveColumns(header []string) (columnIndexes, error) {
	idx := columnIndexes{orderDate: -1, entity: -1, category: -1, quantity: -1, unitPrice: -1, profit: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case colOrderDate:
			idx.orderDate = i
		case colEntity:
			idx.entity = i
		case colCategory:
			idx.category = i
		case colQuantity:
			idx.quantity = i
		case colUnitPrice:
			idx.unitPrice = i
		case colProfit:
			idx.profit = i
		}
	}

	missing := func(name string) error {
		return fmt.Errorf("csv header missing required column %q", name)
	}
	switch {
	case idx.orderDate < 0:
		return idx, missing(colOrderDate)
	case idx.entity < 0:
		return idx, missing(colEntity)
	case idx.category < 0:
		return idx, missing(colCategory)
	case idx.quantity < 0:
		return idx, missing(colQuantity)
	case idx.unitPrice < 0:
		return idx, missing(colUnitPrice)
	case idx.profit < 0:
		return idx, missing(colProfit)
	}

	return idx, nil
}

// parseRow validates and converts one CSV row.
func parseRow(row []string, cols columnIndexes, line int) (*domain.SalesRecord, error) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	orderDate, err := time.Parse(dateLayout, field(cols.orderDate))
	if err != nil {
		return nil, fmt.Errorf("csv line %d: invalid order_date %q: %w", line, field(cols.orderDate), err)
	}

	entity := field(cols.entity)
	if entity == "" {
		return nil, fmt.Errorf("csv line %d: empty product", line)
	}
	category := field(cols.category)
	if category == "" {
		return nil, fmt.Errorf("csv line %d: empty category", line)
	}

	quantity, err := strconv.ParseFloat(field(cols.quantity), 64)
	if err != nil {
		return nil, fmt.Errorf("csv line %d: invalid quantity %q: %w", line, field(cols.quantity), err)
	}
	unitPrice, err := strconv.ParseFloat(field(cols.unitPrice), 64)
	if err != nil {
		return nil, fmt.Errorf("csv line %d: invalid unit_price %q: %w", line, field(cols.unitPrice), err)
	}
	profit, err := strconv.ParseFloat(field(cols.profit), 64)
	if err != nil {
		return nil, fmt.Errorf("csv line %d: invalid profit %q: %w", line, field(cols.profit), err)
	}

	orderDateMs := orderDate.UTC().UnixMilli()
	return &domain.SalesRecord{
		RecordID:  idhash.ComputeRecordID(orderDateMs, entity, category, quantity, unitPrice, profit, line),
		OrderDate: orderDateMs,
		Entity:    entity,
		Category:  category,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Profit:    profit,
	}, nil
}
