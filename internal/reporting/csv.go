package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders ranked matches as a CSV string.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("rank,entity,category,total,dtw_distance,match_quality\n")
	for i, m := range r.Matches {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%.6f,%.6f,%.2f\n",
			i+1,
			csvEscape(m.Entity),
			csvEscape(m.Category),
			m.Total,
			m.DTWDistance,
			m.MatchQuality,
		))
	}

	return sb.String()
}

// csvEscape quotes a field containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
