package domain

// SalesRecord represents one raw sales transaction.
// Corresponds to sales_records table in PostgreSQL.
type SalesRecord struct {
	RecordID  string  // PRIMARY KEY, deterministic hash
	OrderDate int64   // Unix timestamp in milliseconds (validated upstream)
	Entity    string  // entity key, e.g. product name
	Category  string  // category label, e.g. "Furniture"
	Quantity  float64 // units sold
	UnitPrice float64 // price per unit
	Profit    float64 // profit on the transaction
	CreatedAt int64   // record creation timestamp (ms)
}

// Amount returns the sales amount of the transaction.
func (r *SalesRecord) Amount() float64 {
	return r.Quantity * r.UnitPrice
}
