package models

import "github.com/teei/insights-nlq/internal/nlq"

// GenerateRequest for POST /api/v1/query/generate, /validate and /preview.
// The intent fields mirror the upstream classifier's output; the company id
// identifies the tenant the query is scoped to.
type GenerateRequest struct {
	CompanyID  string            `json:"company_id"`
	TemplateID string            `json:"template_id"`
	TimeRange  *nlq.TimeRange    `json:"time_range,omitempty"`
	Limit      int               `json:"limit,omitempty"`
	GroupBy    []string          `json:"group_by,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	Slots      map[string]any    `json:"slots,omitempty"`
}

// Intent converts the request body into the core's intent structure
func (r *GenerateRequest) Intent() *nlq.IntentClassification {
	return &nlq.IntentClassification{
		TemplateID: r.TemplateID,
		TimeRange:  r.TimeRange,
		Limit:      r.Limit,
		GroupBy:    r.GroupBy,
		Filters:    r.Filters,
		Slots:      r.Slots,
	}
}

// PreviewResponse for POST /api/v1/query/preview
type PreviewResponse struct {
	Status  string            `json:"status"`
	Preview *nlq.QueryPreview `json:"preview"`
	Cost    *nlq.CostEstimate `json:"cost"`
}

// GenerateResponse for POST /api/v1/query/generate
type GenerateResponse struct {
	Status string                     `json:"status"`
	Result *nlq.QueryGenerationResult `json:"result"`
}

// TemplateSummary is the catalog listing entry; template SQL is never
// exposed over the API
type TemplateSummary struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"display_name"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	EstimatedComplexity  string   `json:"estimated_complexity"`
	MaxTimeWindowDays    int      `json:"max_time_window_days"`
	MaxResultRows        int      `json:"max_result_rows"`
	RequiresTenantFilter bool     `json:"requires_tenant_filter"`
	AllowedTimeRanges    []string `json:"allowed_time_ranges"`
	AllowedGroupBy       []string `json:"allowed_group_by"`
	CacheTTLSeconds      int      `json:"cache_ttl_seconds"`
}
