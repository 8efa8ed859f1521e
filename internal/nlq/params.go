package nlq

import (
	"math"
	"time"

	"github.com/teei/insights-nlq/internal/catalog"
)

// TimeRange is the intent's requested window: a shorthand type, or custom
// with explicit bounds
type TimeRange struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// IntentClassification is the upstream classifier's structured output. The
// engine never sees the natural-language question itself.
type IntentClassification struct {
	TemplateID string            `json:"template_id"`
	TimeRange  *TimeRange        `json:"time_range,omitempty"`
	Limit      int               `json:"limit,omitempty"`
	GroupBy    []string          `json:"group_by,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	Slots      map[string]any    `json:"slots,omitempty"`
}

// QueryParameters is the validated, immutable parameter set a query is
// rendered from
type QueryParameters struct {
	CompanyID string            `json:"company_id"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Limit     int               `json:"limit"`
	GroupBy   []string          `json:"group_by,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	Extra     map[string]any    `json:"extra,omitempty"`
}

// WindowDays returns the window length in whole days, rounding partial days
// up. Returns -1 if either bound fails to parse.
func (p *QueryParameters) WindowDays() int {
	start, err := time.Parse(isoDate, p.StartDate)
	if err != nil {
		return -1
	}
	end, err := time.Parse(isoDate, p.EndDate)
	if err != nil {
		return -1
	}
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// BuildParameters converts an intent into a QueryParameters object.
// Resolution order for the window: explicit custom range, then shorthand,
// then last_30d. The limit falls back to defaultLimit.
func BuildParameters(intent *IntentClassification, companyID string, defaultLimit int, now time.Time) (*QueryParameters, error) {
	kind, customStart, customEnd := "", "", ""
	if tr := intent.TimeRange; tr != nil {
		kind = tr.Type
		customStart, customEnd = tr.StartDate, tr.EndDate
		if kind == "" && customStart != "" && customEnd != "" {
			kind = RangeCustom
		}
	}

	window, err := CalculateDateRange(kind, customStart, customEnd, now)
	if err != nil {
		return nil, err
	}

	limit := intent.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	return &QueryParameters{
		CompanyID: companyID,
		StartDate: window.StartDate,
		EndDate:   window.EndDate,
		Limit:     limit,
		GroupBy:   intent.GroupBy,
		Filters:   intent.Filters,
		Extra:     intent.Slots,
	}, nil
}

// ValidateParameters runs the template's constraint checks in a fixed order
// and aborts on the first failure.
func ValidateParameters(p *QueryParameters, t *catalog.MetricTemplate) error {
	start, err := time.Parse(isoDate, p.StartDate)
	if err != nil {
		return newError(ErrInvalidDate, "start date %q is not a valid ISO date", p.StartDate)
	}
	end, err := time.Parse(isoDate, p.EndDate)
	if err != nil {
		return newError(ErrInvalidDate, "end date %q is not a valid ISO date", p.EndDate)
	}
	if end.Before(start) {
		return newError(ErrInvalidDate, "start date %s is after end date %s", p.StartDate, p.EndDate)
	}

	// 1. Window-length ceiling
	if days := p.WindowDays(); t.MaxTimeWindowDays > 0 && days > t.MaxTimeWindowDays {
		return constraintError(ConstraintTimeWindow,
			"time window exceeds template limit: %d days > %d days", days, t.MaxTimeWindowDays)
	}

	// 2. Row-limit ceiling
	if t.MaxResultRows > 0 && p.Limit > t.MaxResultRows {
		return constraintError(ConstraintResultLimit,
			"result limit exceeds template limit: %d > %d", p.Limit, t.MaxResultRows)
	}

	// 3. Group-by vocabulary
	allowedGroupBy := make(map[string]bool, len(t.AllowedGroupBy))
	for _, f := range t.AllowedGroupBy {
		allowedGroupBy[f] = true
	}
	for _, f := range p.GroupBy {
		if !allowedGroupBy[f] {
			return constraintError(ConstraintGroupBy,
				"invalid group by field %q for template %s", f, t.ID)
		}
	}

	// 4. Filter vocabulary
	for field, value := range p.Filters {
		allowed, ok := t.AllowedFilters[field]
		if !ok {
			return constraintError(ConstraintFilterField,
				"invalid filter field %q for template %s", field, t.ID)
		}
		valid := false
		for _, v := range allowed {
			if v == value {
				valid = true
				break
			}
		}
		if !valid {
			return constraintError(ConstraintFilterValue,
				"invalid filter value %q for field %q", value, field)
		}
	}

	// 5. Mandatory tenant filter
	if t.RequiresTenantFilter {
		if p.CompanyID == "" {
			return constraintError(ConstraintTenantFilter,
				"template %s requires tenant filter but no company id was provided", t.ID)
		}
		if !uuidRe.MatchString(p.CompanyID) {
			return constraintError(ConstraintTenantFilter,
				"company id %q is not a valid UUID", p.CompanyID)
		}
	}

	return nil
}
