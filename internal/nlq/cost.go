package nlq

import "github.com/teei/insights-nlq/internal/catalog"

const estimatedBytesPerRow = 500

// CostEstimate is a heuristic pre-execution estimate used for UI previews
// and budget pre-checks. It is documented guesswork, not a measured
// profile; enforcement lives in the budget layer, not here.
type CostEstimate struct {
	EstimatedRows   int64 `json:"estimated_rows"`
	EstimatedBytes  int64 `json:"estimated_bytes"`
	EstimatedTimeMs int64 `json:"estimated_time_ms"`
}

func complexityMultiplier(c catalog.Complexity) int64 {
	switch c {
	case catalog.ComplexityHigh:
		return 10
	case catalog.ComplexityMedium:
		return 3
	default:
		return 1
	}
}

// EstimateQueryCost estimates rows, bytes and execution time from the window
// length and the template's complexity class
func EstimateQueryCost(t *catalog.MetricTemplate, p *QueryParameters) CostEstimate {
	mult := complexityMultiplier(t.EstimatedComplexity)

	days := int64(p.WindowDays())
	if days < 0 {
		days = 0
	}

	rows := days * mult * 10
	if limit := int64(p.Limit); rows > limit {
		rows = limit
	}

	return CostEstimate{
		EstimatedRows:   rows,
		EstimatedBytes:  rows * estimatedBytesPerRow,
		EstimatedTimeMs: mult * 50,
	}
}
