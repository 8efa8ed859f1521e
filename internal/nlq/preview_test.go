package nlq_test

import (
	"strings"
	"testing"
	"time"

	"github.com/teei/insights-nlq/internal/catalog"
	"github.com/teei/insights-nlq/internal/nlq"
)

// previewAnchor makes [2025-01-01, 2025-01-31] read as the last 30 days
var previewAnchor = time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)

func TestGeneratePreviewScenario(t *testing.T) {
	tmpl := testTemplate(t)
	p := baseParams("2025-01-01", "2025-01-31", 100)

	preview := nlq.GeneratePreview(tmpl, p, previewAnchor)

	if preview.TimeRange != "Last 30 days" {
		t.Errorf("time range = %q, want %q", preview.TimeRange, "Last 30 days")
	}
	if preview.ResultLimit != 100 {
		t.Errorf("result limit = %d, want 100", preview.ResultLimit)
	}
	if preview.CacheTTLSeconds != 3600 {
		t.Errorf("cache ttl = %d, want 3600", preview.CacheTTLSeconds)
	}

	lower := strings.ToLower(preview.Explanation)
	if !strings.Contains(lower, "cached") {
		t.Errorf("explanation should mention caching: %s", preview.Explanation)
	}
	if !strings.Contains(lower, "tenant isolation") {
		t.Errorf("explanation should mention tenant isolation: %s", preview.Explanation)
	}
	if !strings.Contains(preview.Explanation, tmpl.DisplayName) {
		t.Errorf("explanation should name the template: %s", preview.Explanation)
	}

	// The tenant filter is always listed
	if len(preview.Filters) == 0 || !strings.Contains(preview.Filters[0], p.CompanyID) {
		t.Errorf("filters should lead with the company: %v", preview.Filters)
	}
}

func TestPreviewTimeRangePhrasing(t *testing.T) {
	tmpl := testTemplate(t)

	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{"last 7 days", "2025-01-24", "2025-01-31", "Last 7 days"},
		{"ytd", "2025-01-01", "2025-01-20", "2025-01-01 to 2025-01-20"}, // does not end today: literal
		{"literal range", "2024-03-01", "2024-04-15", "2024-03-01 to 2024-04-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams(tt.start, tt.end, 10)
			preview := nlq.GeneratePreview(tmpl, p, previewAnchor)
			if preview.TimeRange != tt.want {
				t.Errorf("time range = %q, want %q", preview.TimeRange, tt.want)
			}
		})
	}
}

func TestPreviewYearToDate(t *testing.T) {
	tmpl := testTemplate(t)
	now := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)
	p := baseParams("2025-01-01", "2025-05-10", 10)
	preview := nlq.GeneratePreview(tmpl, p, now)
	if preview.TimeRange != "Year to date — 2025" {
		t.Errorf("time range = %q, want year to date", preview.TimeRange)
	}
}

func TestPreviewCacheDurationWording(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{45, "45 seconds"},
		{300, "5 minutes"},
		{3600, "1 hours"},
		{7200, "2 hours"},
	}
	for _, tt := range tests {
		if got := nlq.FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}

	// The wording reaches the explanation text
	tmpl := testTemplate(t)
	tmpl.CacheTTLSeconds = 45
	p := baseParams("2025-01-01", "2025-01-31", 100)
	if expl := nlq.GeneratePreview(tmpl, p, previewAnchor).Explanation; !strings.Contains(expl, "45 seconds") {
		t.Errorf("explanation should contain %q: %s", "45 seconds", expl)
	}
	tmpl.CacheTTLSeconds = 7200
	if expl := nlq.GeneratePreview(tmpl, p, previewAnchor).Explanation; !strings.Contains(expl, "2 hours") {
		t.Errorf("explanation should contain %q: %s", "2 hours", expl)
	}
}

func TestSimplePreviewShorterThanExplanation(t *testing.T) {
	tmpl := testTemplate(t)
	p := baseParams("2025-01-01", "2025-01-31", 100)
	p.GroupBy = []string{"team"}
	p.Filters = map[string]string{"status": "active"}

	simple := nlq.SimplePreview(tmpl, p, previewAnchor)
	full := nlq.GeneratePreview(tmpl, p, previewAnchor).Explanation
	if len(simple) >= len(full) {
		t.Errorf("simple preview (%d chars) should be shorter than explanation (%d chars)", len(simple), len(full))
	}
}

func TestPreviewFilterAndGroupByDescriptions(t *testing.T) {
	tmpl := testTemplate(t)
	p := baseParams("2025-01-01", "2025-01-31", 100)
	p.GroupBy = []string{"team", "region"}
	p.Filters = map[string]string{"program_status": "active"}

	preview := nlq.GeneratePreview(tmpl, p, previewAnchor)

	joined := strings.Join(preview.Filters, " | ")
	if !strings.Contains(joined, "Program Status: Active") {
		t.Errorf("filter not title-cased: %v", preview.Filters)
	}
	if !strings.Contains(joined, "Grouped by: Team, Region") {
		t.Errorf("group by description missing: %v", preview.Filters)
	}
}

func TestPreviewDataSource(t *testing.T) {
	tmpl := testTemplate(t)
	p := baseParams("2025-01-01", "2025-01-31", 10)
	if got := nlq.GeneratePreview(tmpl, p, previewAnchor).DataSource; got != "postgres" {
		t.Errorf("data source = %q, want postgres", got)
	}

	tmpl.CHQLTemplate = "SELECT 1 FROM metric_facts"
	if got := nlq.GeneratePreview(tmpl, p, previewAnchor).DataSource; got != "clickhouse" {
		t.Errorf("data source = %q, want clickhouse", got)
	}
}

func TestPreviewComplexityWording(t *testing.T) {
	p := baseParams("2025-01-01", "2025-01-31", 10)
	for _, c := range []catalog.Complexity{catalog.ComplexityLow, catalog.ComplexityMedium, catalog.ComplexityHigh} {
		tmpl := testTemplate(t)
		tmpl.EstimatedComplexity = c
		expl := nlq.GeneratePreview(tmpl, p, previewAnchor).Explanation
		if !strings.Contains(expl, string(c)) {
			t.Errorf("explanation should state %q complexity: %s", c, expl)
		}
	}
}
