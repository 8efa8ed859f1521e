package nlq

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teei/insights-nlq/internal/catalog"
)

// QueryPreview is the human-readable description of what a generated query
// will do, shown to the user before anything runs
type QueryPreview struct {
	Description         string             `json:"description"`
	DataSource          string             `json:"data_source"`
	TimeRange           string             `json:"time_range"`
	Filters             []string           `json:"filters"`
	ResultLimit         int                `json:"result_limit"`
	EstimatedComplexity catalog.Complexity `json:"estimated_complexity"`
	CacheTTLSeconds     int                `json:"cache_ttl_seconds"`
	EstimatedTime       string             `json:"estimated_time"`
	Explanation         string             `json:"explanation"`
}

// GeneratePreview derives the full preview for a template/parameter pair.
// now anchors the "last N days" phrasing.
func GeneratePreview(t *catalog.MetricTemplate, p *QueryParameters, now time.Time) *QueryPreview {
	timeRange := formatTimeRange(p, now)

	filters := []string{fmt.Sprintf("Company: %s", p.CompanyID)}
	for _, field := range sortedKeys(p.Filters) {
		filters = append(filters, fmt.Sprintf("%s: %s", titleCase(field), titleCase(p.Filters[field])))
	}
	if len(p.GroupBy) > 0 {
		titled := make([]string, len(p.GroupBy))
		for i, f := range p.GroupBy {
			titled[i] = titleCase(f)
		}
		filters = append(filters, "Grouped by: "+strings.Join(titled, ", "))
	}

	return &QueryPreview{
		Description:         fmt.Sprintf("%s — %s", t.DisplayName, t.Description),
		DataSource:          dataSource(t),
		TimeRange:           timeRange,
		Filters:             filters,
		ResultLimit:         p.Limit,
		EstimatedComplexity: t.EstimatedComplexity,
		CacheTTLSeconds:     t.CacheTTLSeconds,
		EstimatedTime:       estimatedTimeWords(t.EstimatedComplexity),
		Explanation:         explanation(t, timeRange),
	}
}

// SimplePreview is the condensed one-line variant for compact UI contexts.
// It is always shorter than the full explanation.
func SimplePreview(t *catalog.MetricTemplate, p *QueryParameters, now time.Time) string {
	return fmt.Sprintf("%s, %s, up to %d rows", t.DisplayName, formatTimeRange(p, now), p.Limit)
}

func explanation(t *catalog.MetricTemplate, timeRange string) string {
	return fmt.Sprintf(
		"This query runs %s over %s. Tenant isolation is enforced: only the requesting company's data is read. "+
			"Results are cached for %s. Expected complexity is %s, with a typical execution time of %s.",
		t.DisplayName, strings.ToLower(timeRange[:1])+timeRange[1:],
		FormatDuration(t.CacheTTLSeconds),
		complexityWords(t.EstimatedComplexity),
		estimatedTimeWords(t.EstimatedComplexity),
	)
}

// formatTimeRange recognizes the common presets within a one-day tolerance
// and otherwise falls back to the literal ISO range
func formatTimeRange(p *QueryParameters, now time.Time) string {
	start, errS := time.Parse(isoDate, p.StartDate)
	end, errE := time.Parse(isoDate, p.EndDate)
	literal := fmt.Sprintf("%s to %s", p.StartDate, p.EndDate)
	if errS != nil || errE != nil {
		return literal
	}

	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	endsToday := absDays(today.Sub(end)) <= 1
	days := int(end.Sub(start).Hours() / 24)

	if endsToday {
		switch {
		case within(days, 7, 1):
			return "Last 7 days"
		case within(days, 30, 1):
			return "Last 30 days"
		case within(days, 90, 1):
			return "Last 90 days"
		}
		if start.Month() == time.January && start.Day() == 1 && start.Year() == today.Year() {
			return fmt.Sprintf("Year to date — %d", today.Year())
		}
	}
	return literal
}

// FormatDuration renders seconds in the unit a human would pick
func FormatDuration(seconds int) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d seconds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d minutes", seconds/60)
	default:
		return fmt.Sprintf("%d hours", seconds/3600)
	}
}

func complexityWords(c catalog.Complexity) string {
	switch c {
	case catalog.ComplexityHigh:
		return "high (heavy aggregation)"
	case catalog.ComplexityMedium:
		return "medium (multi-table aggregation)"
	default:
		return "low (single-table aggregation)"
	}
}

func estimatedTimeWords(c catalog.Complexity) string {
	switch c {
	case catalog.ComplexityHigh:
		return "under 5 seconds"
	case catalog.ComplexityMedium:
		return "under 2 seconds"
	default:
		return "under a second"
	}
}

func dataSource(t *catalog.MetricTemplate) string {
	if t.HasCHQL() {
		return "clickhouse"
	}
	return "postgres"
}

// titleCase converts snake_case or camelCase field names to Title Case
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && s[i-1] != ' ' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func within(v, target, tolerance int) bool {
	d := v - target
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func absDays(d time.Duration) float64 {
	days := d.Hours() / 24
	if days < 0 {
		days = -days
	}
	return days
}
