package reporting

import (
	"strings"
	"testing"

	"sketchmatch/internal/domain"
)

func testReport() *Report {
	return NewReport("Hardware", 42, 7, 12, domain.RankedMatches{
		{Entity: "Widget", Category: "Hardware", Total: 1234.5, DTWDistance: 0.25, MatchQuality: 95},
		{Entity: "Gadget", Category: "Hardware", Total: 987.0, DTWDistance: 1.5, MatchQuality: 70},
	})
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(testReport())

	for _, want := range []string{
		"# Pattern Search Report",
		"| Category | Hardware |",
		"| Stroke Points | 42 |",
		"| Eligible Series | 7 |",
		"| Period Count | 12 |",
		"| 1 | Widget |",
		"| 2 | Gadget |",
		"95%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoMatches(t *testing.T) {
	r := NewReport("All", 10, 0, 0, nil)

	out := RenderMarkdown(r)
	if !strings.Contains(out, "No matches.") {
		t.Error("expected explicit empty-result line")
	}
	if strings.Contains(out, "| Rank |") {
		t.Error("empty report should not render a match table")
	}
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV(testReport())

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "rank,entity,category,total,dtw_distance,match_quality" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,Widget,Hardware,") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
}

func TestRenderCSV_EscapesFields(t *testing.T) {
	r := NewReport("All", 10, 1, 1, domain.RankedMatches{
		{Entity: `Widget, "Deluxe"`, Category: "Hardware", Total: 1, DTWDistance: 0, MatchQuality: 100},
	})

	out := RenderCSV(r)
	if !strings.Contains(out, `"Widget, ""Deluxe"""`) {
		t.Errorf("entity not escaped: %s", out)
	}
}
