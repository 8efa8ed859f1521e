// Package catalog holds the read-only registry of metric templates the
// query generator compiles against. Templates are immutable after load and
// safe for concurrent reads.
package catalog

import (
	"regexp"
	"strings"
)

// Complexity classifies a template's expected execution cost
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// MetricTemplate is a parameterized SQL/CHQL query plus its safety envelope
type MetricTemplate struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`

	SQLTemplate  string `yaml:"sql_template" json:"-"`
	CHQLTemplate string `yaml:"chql_template,omitempty" json:"-"`

	AllowedTimeRanges []string `yaml:"allowed_time_ranges" json:"allowed_time_ranges"`
	MaxTimeWindowDays int      `yaml:"max_time_window_days" json:"max_time_window_days"`
	MaxResultRows     int      `yaml:"max_result_rows" json:"max_result_rows"`

	RequiresTenantFilter bool `yaml:"requires_tenant_filter" json:"requires_tenant_filter"`

	AllowedJoins   []string            `yaml:"allowed_joins" json:"allowed_joins"`
	AllowedGroupBy []string            `yaml:"allowed_group_by" json:"allowed_group_by"`
	AllowedFilters map[string][]string `yaml:"allowed_filters" json:"allowed_filters"`
	DeniedColumns  []string            `yaml:"denied_columns" json:"denied_columns"`

	EstimatedComplexity Complexity `yaml:"estimated_complexity" json:"estimated_complexity"`
	CacheTTLSeconds     int        `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	// ParameterKinds optionally declares the sanitizer kind per placeholder
	// name ("uuid", "date", "enum", "number", "string"). Placeholders without
	// a declaration fall back to inference from the parameter name.
	ParameterKinds map[string]string `yaml:"parameter_kinds,omitempty" json:"-"`

	// expectedTables is extracted from SQLTemplate once at load time
	expectedTables []string
}

// fromJoinRe matches table names referenced by FROM/JOIN clauses. Template
// text is static so this runs once per template at load, never per request.
var fromJoinRe = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([a-zA-Z_][a-zA-Z0-9_.]*)`)

// ExtractTables returns the lower-cased, deduplicated table names referenced
// by FROM/JOIN clauses of the given SQL text, in order of first appearance.
func ExtractTables(sql string) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, m := range fromJoinRe.FindAllStringSubmatch(sql, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			tables = append(tables, name)
		}
	}
	return tables
}

// ExpectedTables returns the tables the template's SQL is declared to read.
// The slice is shared and must not be mutated by callers.
func (t *MetricTemplate) ExpectedTables() []string {
	return t.expectedTables
}

// HasCHQL reports whether the template carries an analytical-store variant
func (t *MetricTemplate) HasCHQL() bool {
	return t.CHQLTemplate != ""
}

func (t *MetricTemplate) compile() {
	t.expectedTables = ExtractTables(t.SQLTemplate)
}
