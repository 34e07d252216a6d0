package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Pattern Search Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Query\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Category | %s |\n", r.Category))
	sb.WriteString(fmt.Sprintf("| Stroke Points | %d |\n", r.StrokePoints))
	sb.WriteString(fmt.Sprintf("| Eligible Series | %d |\n", r.CorpusSize))
	sb.WriteString(fmt.Sprintf("| Period Count | %d |\n", r.PeriodCount))
	sb.WriteString("\n")

	sb.WriteString("## Matches\n\n")
	if len(r.Matches) == 0 {
		sb.WriteString("No matches.\n")
		return sb.String()
	}

	sb.WriteString("| Rank | Entity | Category | Total Sales | DTW Distance | Match Quality |\n")
	sb.WriteString("|------|--------|----------|-------------|--------------|---------------|\n")
	for i, m := range r.Matches {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %.2f | %.4f | %.0f%% |\n",
			i+1, m.Entity, m.Category, m.Total, m.DTWDistance, m.MatchQuality))
	}
	sb.WriteString("\n")

	return sb.String()
}
