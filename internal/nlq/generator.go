package nlq

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teei/insights-nlq/internal/catalog"
	"github.com/teei/insights-nlq/internal/guardrail"
)

// Catalog is the read-only template registry the generator compiles against
type Catalog interface {
	Get(id string) (*catalog.MetricTemplate, bool)
}

// GenerateOptions controls a single generation call
type GenerateOptions struct {
	CompanyID    string
	DefaultLimit int
	// SkipSafetyValidation bypasses the guardrail call. Zero value runs it.
	SkipSafetyValidation bool
}

// QueryGenerationResult is the output bundle of a successful generation.
// It is constructed once per call and never mutated afterwards.
type QueryGenerationResult struct {
	SQL             string             `json:"sql"`
	CHQL            string             `json:"chql,omitempty"`
	Preview         string             `json:"preview"`
	Details         *QueryPreview      `json:"details"`
	TemplateID      string             `json:"template_id"`
	Parameters      *QueryParameters   `json:"parameters"`
	Complexity      catalog.Complexity `json:"complexity"`
	CacheTTLSeconds int                `json:"cache_ttl_seconds"`
	Safety          *guardrail.Report  `json:"safety,omitempty"`
	Cost            *CostEstimate      `json:"cost"`
	RenderedParams  map[string]string  `json:"-"`
}

// ValidationResult is the dry-run outcome: thrown errors become entries
// instead of propagating
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Generator is the orchestrator: template lookup, parameter build and
// validation, render, structural validation, guardrails, preview. Stateless
// apart from the injected collaborators; safe for concurrent use.
type Generator struct {
	catalog Catalog
	guard   guardrail.Validator

	// Now supplies the anchor instant for date math. Overridable in tests;
	// defaults to time.Now.
	Now func() time.Time
}

func NewGenerator(cat Catalog, guard guardrail.Validator) *Generator {
	return &Generator{catalog: cat, guard: guard, Now: time.Now}
}

// GenerateQuery runs the full pipeline. Any step's failure aborts the call;
// no partial result is ever returned.
func (g *Generator) GenerateQuery(ctx context.Context, intent *IntentClassification, opts GenerateOptions) (*QueryGenerationResult, error) {
	tmpl, ok := g.catalog.Get(intent.TemplateID)
	if !ok {
		return nil, newError(ErrUnknownTemplate, "unknown template %q", intent.TemplateID)
	}

	params, err := BuildParameters(intent, opts.CompanyID, opts.DefaultLimit, g.Now())
	if err != nil {
		return nil, err
	}
	if err := ValidateParameters(params, tmpl); err != nil {
		return nil, err
	}

	renderer := NewRenderer(tmpl.ParameterKinds)
	renderCtx := buildContext(params)

	var sqlQ, chqlQ *RenderedQuery
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var rerr error
		sqlQ, rerr = renderer.Render(tmpl.SQLTemplate, renderCtx)
		return rerr
	})
	if tmpl.HasCHQL() {
		eg.Go(func() error {
			var rerr error
			chqlQ, rerr = renderer.Render(tmpl.CHQLTemplate, renderCtx)
			return rerr
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	expectedTables := tmpl.ExpectedTables()
	if err := ValidateRenderedSQL(sqlQ.SQL, expectedTables); err != nil {
		return nil, err
	}
	if chqlQ != nil {
		if err := ValidateRenderedSQL(chqlQ.SQL, catalog.ExtractTables(tmpl.CHQLTemplate)); err != nil {
			return nil, err
		}
	}

	var report *guardrail.Report
	if !opts.SkipSafetyValidation {
		report, err = g.guard.Validate(ctx, sqlQ.SQL, guardrail.Input{
			CompanyID:     params.CompanyID,
			TemplateID:    tmpl.ID,
			AllowedTables: expectedTables,
			AllowedJoins:  tmpl.AllowedJoins,
		})
		if err != nil {
			return nil, newError(ErrSafetyValidation, "safety validator unavailable: %v", err)
		}
		if !report.Passed {
			return nil, safetyError(report)
		}
	}

	now := g.Now()
	preview := GeneratePreview(tmpl, params, now)
	cost := EstimateQueryCost(tmpl, params)

	result := &QueryGenerationResult{
		SQL:             sqlQ.SQL,
		Preview:         SimplePreview(tmpl, params, now),
		Details:         preview,
		TemplateID:      tmpl.ID,
		Parameters:      params,
		Complexity:      tmpl.EstimatedComplexity,
		CacheTTLSeconds: tmpl.CacheTTLSeconds,
		Safety:          report,
		Cost:            &cost,
		RenderedParams:  sqlQ.Parameters,
	}
	if chqlQ != nil {
		result.CHQL = chqlQ.SQL
	}
	return result, nil
}

// ValidateQuery is the non-executing dry run: it runs the same pipeline and
// converts any error into a structured result instead of propagating. This
// is the one documented exception to the always-abort rule.
func (g *Generator) ValidateQuery(ctx context.Context, intent *IntentClassification, opts GenerateOptions) *ValidationResult {
	if _, err := g.GenerateQuery(ctx, intent, opts); err != nil {
		return &ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}
	return &ValidationResult{Valid: true}
}

// PreviewQuery produces the preview and cost estimate without rendering SQL
// or invoking the guardrails
func (g *Generator) PreviewQuery(intent *IntentClassification, opts GenerateOptions) (*QueryPreview, *CostEstimate, error) {
	tmpl, ok := g.catalog.Get(intent.TemplateID)
	if !ok {
		return nil, nil, newError(ErrUnknownTemplate, "unknown template %q", intent.TemplateID)
	}
	params, err := BuildParameters(intent, opts.CompanyID, opts.DefaultLimit, g.Now())
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateParameters(params, tmpl); err != nil {
		return nil, nil, err
	}
	preview := GeneratePreview(tmpl, params, g.Now())
	cost := EstimateQueryCost(tmpl, params)
	return preview, &cost, nil
}

// buildContext assembles the render context: extra slots first, then filter
// values (under both their raw and lowerCamel names so snake_case filter
// keys satisfy camelCase placeholders), then the fixed fields, which always
// win.
func buildContext(p *QueryParameters) TemplateContext {
	ctx := make(TemplateContext, len(p.Extra)+len(p.Filters)+4)
	for k, v := range p.Extra {
		ctx[k] = v
	}
	for k, v := range p.Filters {
		ctx[k] = v
		ctx[lowerCamel(k)] = v
	}
	ctx["companyId"] = p.CompanyID
	ctx["startDate"] = p.StartDate
	ctx["endDate"] = p.EndDate
	ctx["limit"] = p.Limit
	return ctx
}

func lowerCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// safetyError flattens the report into a composite error carrying every
// violation and every failed check's details verbatim
func safetyError(r *guardrail.Report) *Error {
	var b strings.Builder
	b.WriteString("query failed safety validation")
	if len(r.Violations) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(r.Violations, "; "))
	}
	for _, c := range r.Checks {
		if !c.Passed && c.Details != "" {
			b.WriteString("; check ")
			b.WriteString(c.Name)
			b.WriteString(" failed: ")
			b.WriteString(c.Details)
		}
	}
	return &Error{Kind: ErrSafetyValidation, Message: b.String()}
}
