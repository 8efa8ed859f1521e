package nlq_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/teei/insights-nlq/internal/catalog"
	"github.com/teei/insights-nlq/internal/guardrail"
	"github.com/teei/insights-nlq/internal/nlq"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]*catalog.MetricTemplate{
		{
			ID:          "test_metric",
			DisplayName: "Test Metric",
			Description: "A metric used by the tests",
			Category:    "testing",
			SQLTemplate: `SELECT metric_date, value FROM metric_facts
				WHERE company_id = {{companyId}}
				AND metric_date BETWEEN {{startDate}} AND {{endDate}}
				LIMIT {{limit}}`,
			MaxTimeWindowDays:    365,
			MaxResultRows:        100,
			RequiresTenantFilter: true,
			EstimatedComplexity:  catalog.ComplexityLow,
			CacheTTLSeconds:      3600,
		},
		{
			ID:          "dual_store_metric",
			DisplayName: "Dual Store Metric",
			Description: "Rendered against both stores",
			Category:    "testing",
			SQLTemplate: `SELECT value FROM metric_facts
				WHERE company_id = {{companyId}}
				AND metric_date BETWEEN {{startDate}} AND {{endDate}}
				LIMIT {{limit}}`,
			CHQLTemplate: `SELECT value FROM metric_facts
				WHERE company_id = {{companyId}}
				AND metric_date BETWEEN {{startDate}} AND {{endDate}}
				LIMIT {{limit}}`,
			MaxTimeWindowDays:    365,
			MaxResultRows:        100,
			RequiresTenantFilter: true,
			EstimatedComplexity:  catalog.ComplexityMedium,
			CacheTTLSeconds:      600,
		},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func newTestGenerator(t *testing.T) *nlq.Generator {
	t.Helper()
	g := nlq.NewGenerator(testCatalog(t), guardrail.NewEngine())
	g.Now = func() time.Time { return anchor }
	return g
}

func testIntent() *nlq.IntentClassification {
	return &nlq.IntentClassification{
		TemplateID: "test_metric",
		TimeRange:  customRange("2025-06-01", "2025-06-15"),
	}
}

func testOpts() nlq.GenerateOptions {
	return nlq.GenerateOptions{CompanyID: testCompanyID, DefaultLimit: 100}
}

// ─── Pipeline ─────────────────────────────────────────────────────────────────

func TestGenerateQuery(t *testing.T) {
	g := newTestGenerator(t)

	result, err := g.GenerateQuery(context.Background(), testIntent(), testOpts())
	if err != nil {
		t.Fatalf("GenerateQuery: %v", err)
	}

	// Tenant isolation: the literal tenant UUID is in the SQL
	if !strings.Contains(result.SQL, "'"+testCompanyID+"'") {
		t.Errorf("rendered SQL missing tenant literal: %q", result.SQL)
	}
	if strings.Contains(result.SQL, "{{") {
		t.Errorf("rendered SQL has leftover placeholders: %q", result.SQL)
	}
	if result.TemplateID != "test_metric" {
		t.Errorf("template id = %q", result.TemplateID)
	}
	if result.CacheTTLSeconds != 3600 {
		t.Errorf("cache ttl = %d, want 3600", result.CacheTTLSeconds)
	}
	if result.Safety == nil || !result.Safety.Passed {
		t.Errorf("safety report should pass: %+v", result.Safety)
	}
	if result.Cost == nil || result.Cost.EstimatedRows <= 0 {
		t.Errorf("cost estimate missing: %+v", result.Cost)
	}
}

func TestGenerateQueryIdempotent(t *testing.T) {
	g := newTestGenerator(t)

	first, err := g.GenerateQuery(context.Background(), testIntent(), testOpts())
	if err != nil {
		t.Fatalf("GenerateQuery: %v", err)
	}
	second, err := g.GenerateQuery(context.Background(), testIntent(), testOpts())
	if err != nil {
		t.Fatalf("GenerateQuery: %v", err)
	}
	if first.SQL != second.SQL {
		t.Errorf("generation is not idempotent:\n%s\n%s", first.SQL, second.SQL)
	}
}

func TestGenerateQueryUnknownTemplate(t *testing.T) {
	g := newTestGenerator(t)
	intent := testIntent()
	intent.TemplateID = "does_not_exist"

	_, err := g.GenerateQuery(context.Background(), intent, testOpts())
	if nlq.KindOf(err) != nlq.ErrUnknownTemplate {
		t.Errorf("expected unknown template error, got %v", err)
	}
}

func TestGenerateQueryMissingTenant(t *testing.T) {
	g := newTestGenerator(t)
	opts := testOpts()
	opts.CompanyID = ""

	_, err := g.GenerateQuery(context.Background(), testIntent(), opts)
	if err == nil {
		t.Fatal("generation without company id should fail")
	}
	e, ok := err.(*nlq.Error)
	if !ok || e.Constraint != nlq.ConstraintTenantFilter {
		t.Errorf("expected tenant filter constraint, got %v", err)
	}
}

func TestGenerateQueryRendersCHQL(t *testing.T) {
	g := newTestGenerator(t)
	intent := testIntent()
	intent.TemplateID = "dual_store_metric"

	result, err := g.GenerateQuery(context.Background(), intent, testOpts())
	if err != nil {
		t.Fatalf("GenerateQuery: %v", err)
	}
	if result.CHQL == "" {
		t.Fatal("CHQL variant not rendered")
	}
	if !strings.Contains(result.CHQL, "'"+testCompanyID+"'") {
		t.Errorf("CHQL missing tenant literal: %q", result.CHQL)
	}
}

// ─── Safety validation ────────────────────────────────────────────────────────

type rejectingValidator struct{}

func (rejectingValidator) Validate(ctx context.Context, sql string, in guardrail.Input) (*guardrail.Report, error) {
	return &guardrail.Report{
		Passed:     false,
		Violations: []string{"tables not on allow-list: secrets"},
		Checks: []guardrail.CheckResult{
			{Name: "table_allowlist", Passed: false, Details: "table secrets is outside the declared envelope"},
		},
	}, nil
}

func TestGenerateQuerySafetyFailureSurfacesDetails(t *testing.T) {
	g := nlq.NewGenerator(testCatalog(t), rejectingValidator{})
	g.Now = func() time.Time { return anchor }

	_, err := g.GenerateQuery(context.Background(), testIntent(), testOpts())
	if nlq.KindOf(err) != nlq.ErrSafetyValidation {
		t.Fatalf("expected safety validation error, got %v", err)
	}
	msg := err.Error()
	// Violations and failed check details must both appear verbatim
	if !strings.Contains(msg, "tables not on allow-list: secrets") {
		t.Errorf("violation missing from error: %s", msg)
	}
	if !strings.Contains(msg, "table secrets is outside the declared envelope") {
		t.Errorf("check details missing from error: %s", msg)
	}
}

func TestGenerateQuerySkipSafety(t *testing.T) {
	g := nlq.NewGenerator(testCatalog(t), rejectingValidator{})
	g.Now = func() time.Time { return anchor }

	opts := testOpts()
	opts.SkipSafetyValidation = true
	result, err := g.GenerateQuery(context.Background(), testIntent(), opts)
	if err != nil {
		t.Fatalf("GenerateQuery with safety skipped: %v", err)
	}
	if result.Safety != nil {
		t.Error("safety report should be nil when validation is skipped")
	}
}

// ─── Dry run ──────────────────────────────────────────────────────────────────

func TestValidateQueryConvertsErrors(t *testing.T) {
	g := newTestGenerator(t)

	// Valid intent
	res := g.ValidateQuery(context.Background(), testIntent(), testOpts())
	if !res.Valid || len(res.Errors) != 0 {
		t.Errorf("valid intent reported invalid: %+v", res)
	}

	// Unknown template becomes a structured error, not a propagated one
	intent := testIntent()
	intent.TemplateID = "nope"
	res = g.ValidateQuery(context.Background(), intent, testOpts())
	if res.Valid {
		t.Fatal("unknown template should be invalid")
	}
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0], "nope") {
		t.Errorf("errors = %v", res.Errors)
	}
}
