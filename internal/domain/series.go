package domain

// SeriesPoint represents one prepared per-entity period aggregate.
// Corresponds to series_points table in ClickHouse.
type SeriesPoint struct {
	Entity      string  // entity key (product name)
	Category    string  // category label
	PeriodKey   string  // period key, e.g. "2024-03"
	PeriodIndex int     // position on the corpus-wide period axis
	Value       float64 // aggregated sales amount for the period
}

// TimeSeries is one entity's prepared series on the shared period axis.
// Values[i] is the amplitude at period i; missing periods are zero-filled
// by preparation, so len(Values) always equals the corpus period count.
// Built once per corpus load; immutable afterward.
type TimeSeries struct {
	Entity   string    `json:"entity"`   // entity key (product name)
	Category string    `json:"category"` // category label
	Values   []float64 `json:"values"`   // one value per period, index-aligned across the corpus
	Total    float64   `json:"total"`    // precomputed sum of Values
}

// NonZeroPeriods returns the number of periods with a non-zero value.
func (s *TimeSeries) NonZeroPeriods() int {
	n := 0
	for _, v := range s.Values {
		if v != 0 {
			n++
		}
	}
	return n
}
