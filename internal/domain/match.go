package domain

// MatchResult is one ranked search hit for a drawn pattern.
type MatchResult struct {
	Entity       string      `json:"entity"`
	Category     string      `json:"category"`
	Total        float64     `json:"total"`
	DTWDistance  float64     `json:"dtwDistance"`
	MatchQuality float64     `json:"matchQuality"` // 0-100, presentation transform of distance
	Series       *TimeSeries `json:"series"`       // for rendering a mini chart
}

// RankedMatches is an ordered match list, ascending by DTWDistance and
// truncated to top-K. Empty is a valid result, not an error.
type RankedMatches []MatchResult
