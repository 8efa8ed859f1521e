package catalog

// Default returns the built-in metric catalog used when no catalog file is
// configured. Templates cover the core CSR reporting metrics plus the finops
// cost facts that live in ClickHouse (hence the CHQL variants).
func Default() *Catalog {
	c, err := New(builtinTemplates())
	if err != nil {
		// Built-in templates are static; a failure here is a programming error
		panic("builtin catalog: " + err.Error())
	}
	return c
}

func builtinTemplates() []*MetricTemplate {
	return []*MetricTemplate{
		{
			ID:          "volunteer_hours_by_team",
			DisplayName: "Volunteer Hours by Team",
			Description: "Total volunteering hours logged per team",
			Category:    "engagement",
			SQLTemplate: `
				SELECT t.name AS team, SUM(vh.hours) AS total_hours
				FROM volunteer_hours vh
				JOIN teams t ON t.id = vh.team_id
				WHERE vh.company_id = {{companyId}}
				  AND vh.activity_date BETWEEN {{startDate}} AND {{endDate}}
				GROUP BY t.name
				ORDER BY total_hours DESC
				LIMIT {{limit}}`,
			AllowedTimeRanges:    []string{"last_7d", "last_30d", "last_90d", "last_quarter", "ytd", "custom"},
			MaxTimeWindowDays:    365,
			MaxResultRows:        500,
			RequiresTenantFilter: true,
			AllowedJoins:         []string{"teams"},
			AllowedGroupBy:       []string{"team", "region", "program"},
			AllowedFilters: map[string][]string{
				"program_status": {"active", "completed", "archived"},
				"region":         {"emea", "amer", "apac"},
			},
			DeniedColumns:       []string{"email", "phone"},
			EstimatedComplexity: ComplexityLow,
			CacheTTLSeconds:     3600,
		},
		{
			ID:          "donation_totals",
			DisplayName: "Donation Totals",
			Description: "Donation amounts aggregated over the selected period",
			Category:    "giving",
			SQLTemplate: `
				SELECT d.currency, SUM(d.amount) AS total_amount, COUNT(*) AS donation_count
				FROM donations d
				WHERE d.company_id = {{companyId}}
				  AND d.donated_at BETWEEN {{startDate}} AND {{endDate}}
				GROUP BY d.currency
				LIMIT {{limit}}`,
			AllowedTimeRanges:    []string{"last_7d", "last_30d", "last_90d", "last_quarter", "ytd", "last_year", "custom"},
			MaxTimeWindowDays:    730,
			MaxResultRows:        100,
			RequiresTenantFilter: true,
			AllowedGroupBy:       []string{"currency", "campaign", "cause"},
			AllowedFilters: map[string][]string{
				"payment_status": {"settled", "pending", "refunded"},
			},
			EstimatedComplexity: ComplexityLow,
			CacheTTLSeconds:     1800,
		},
		{
			ID:          "campaign_conversion",
			DisplayName: "Campaign Conversion",
			Description: "Campaign participation against donation conversion",
			Category:    "campaigns",
			SQLTemplate: `
				SELECT c.name AS campaign, COUNT(DISTINCT p.employee_key) AS participants,
				       COUNT(DISTINCT d.id) AS donations
				FROM campaigns c
				JOIN participations p ON p.campaign_id = c.id
				LEFT JOIN donations d ON d.campaign_id = c.id
				WHERE c.company_id = {{companyId}}
				  AND c.started_at BETWEEN {{startDate}} AND {{endDate}}
				GROUP BY c.name
				LIMIT {{limit}}`,
			AllowedTimeRanges:    []string{"last_30d", "last_90d", "last_quarter", "ytd", "custom"},
			MaxTimeWindowDays:    365,
			MaxResultRows:        200,
			RequiresTenantFilter: true,
			AllowedJoins:         []string{"participations", "donations"},
			AllowedGroupBy:       []string{"campaign", "cause", "region"},
			AllowedFilters: map[string][]string{
				"campaign_status": {"draft", "live", "closed"},
			},
			EstimatedComplexity: ComplexityMedium,
			CacheTTLSeconds:     900,
		},
		{
			ID:          "engagement_cohorts",
			DisplayName: "Engagement Cohorts",
			Description: "Employee engagement benchmarked across peer cohorts",
			Category:    "benchmarks",
			SQLTemplate: `
				SELECT ef.cohort_value, AVG(ef.engagement_score) AS avg_score
				FROM engagement_facts ef
				WHERE ef.company_id = {{companyId}}
				  AND ef.cohort_type = {{cohortType}}
				  AND ef.fact_date BETWEEN {{startDate}} AND {{endDate}}
				GROUP BY ef.cohort_value
				ORDER BY avg_score DESC
				LIMIT {{limit}}`,
			CHQLTemplate: `
				SELECT cohort_value, avg(engagement_score) AS avg_score
				FROM engagement_facts
				WHERE company_id = {{companyId}}
				  AND cohort_type = {{cohortType}}
				  AND fact_date BETWEEN {{startDate}} AND {{endDate}}
				GROUP BY cohort_value
				ORDER BY avg_score DESC
				LIMIT {{limit}}`,
			AllowedTimeRanges:    []string{"last_30d", "last_90d", "last_quarter", "ytd", "custom"},
			MaxTimeWindowDays:    365,
			MaxResultRows:        100,
			RequiresTenantFilter: true,
			AllowedGroupBy:       []string{"cohort_value"},
			AllowedFilters: map[string][]string{
				"cohort_type": {"industry", "region", "company_size"},
			},
			EstimatedComplexity: ComplexityHigh,
			CacheTTLSeconds:     7200,
		},
		{
			ID:          "cost_facts_daily",
			DisplayName: "Daily Cost Facts",
			Description: "Daily platform cost facts from the observability store",
			Category:    "finops",
			SQLTemplate: `
				SELECT cf.usage_date, cf.service, SUM(cf.amount_usd) AS daily_cost
				FROM cost_facts cf
				WHERE cf.company_id = {{companyId}}
				  AND cf.usage_date BETWEEN {{startDate}} AND {{endDate}}
				GROUP BY cf.usage_date, cf.service
				ORDER BY cf.usage_date
				LIMIT {{limit}}`,
			CHQLTemplate: `
				SELECT usage_date, service, sum(amount_usd) AS daily_cost
				FROM cost_facts
				WHERE company_id = {{companyId}}
				  AND usage_date BETWEEN {{startDate}} AND {{endDate}}
				GROUP BY usage_date, service
				ORDER BY usage_date
				LIMIT {{limit}}`,
			AllowedTimeRanges:    []string{"last_7d", "last_30d", "last_90d", "custom"},
			MaxTimeWindowDays:    90,
			MaxResultRows:        1000,
			RequiresTenantFilter: true,
			AllowedGroupBy:       []string{"service", "usage_date", "account"},
			AllowedFilters: map[string][]string{
				"service": {"compute", "storage", "network", "database"},
			},
			EstimatedComplexity: ComplexityMedium,
			CacheTTLSeconds:     600,
		},
	}
}
