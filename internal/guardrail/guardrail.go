// Package guardrail runs the safety checklist against fully-rendered SQL
// before it is handed to any execution layer. The generator consumes the
// Validator interface; Engine is the in-process implementation.
package guardrail

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Input carries the safety envelope a query must be validated against
type Input struct {
	CompanyID     string
	TemplateID    string
	AllowedTables []string
	AllowedJoins  []string
}

// CheckResult is the outcome of a single checklist item
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Details string `json:"details,omitempty"`
}

// Report is the full validation outcome. Violations summarize failures;
// Checks itemize every checklist entry.
type Report struct {
	Passed     bool          `json:"passed"`
	Violations []string      `json:"violations,omitempty"`
	Checks     []CheckResult `json:"checks"`
}

// Validator is the collaborator contract the query generator calls. A
// returned error means the validator itself could not run; a Report with
// Passed=false means the SQL was rejected.
type Validator interface {
	Validate(ctx context.Context, sql string, in Input) (*Report, error)
}

var mutationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*DROP\b`),
	regexp.MustCompile(`(?i);\s*DELETE\b`),
	regexp.MustCompile(`(?i);\s*INSERT\b`),
	regexp.MustCompile(`(?i);\s*UPDATE\b`),
	regexp.MustCompile(`(?i);\s*ALTER\b`),
	regexp.MustCompile(`(?i);\s*CREATE\b`),
	regexp.MustCompile(`(?i);\s*TRUNCATE\b`),
	regexp.MustCompile(`(?i);\s*EXEC(UTE)?\b`),
}

var (
	unionRe     = regexp.MustCompile(`(?i)\bUNION\s+SELECT\b`)
	commentRe   = regexp.MustCompile(`--|/\*`)
	tautologyRe = regexp.MustCompile(`(?i)\b(or|and)\s+'?1'?\s*=\s*'?1'?\b`)
	fileRe      = regexp.MustCompile(`(?i)\bINTO\s+(OUTFILE|DUMPFILE)\b|\bLOAD_FILE\s*\(`)
	timingRe    = regexp.MustCompile(`(?i)\bSLEEP\s*\(|\bBENCHMARK\s*\(|\bWAITFOR\s+DELAY\b`)
	systemRe    = regexp.MustCompile(`(?i)\b(information_schema|pg_catalog|pg_shadow)\b|\bsystem\.`)
	fromJoinRe  = regexp.MustCompile(`(?i)\b(FROM|JOIN)\s+([a-zA-Z_][a-zA-Z0-9_.]*)`)
	joinOnlyRe  = regexp.MustCompile(`(?i)\bJOIN\s+([a-zA-Z_][a-zA-Z0-9_.]*)`)
	tenantColRe = regexp.MustCompile(`(?i)\bcompany_id\s*=`)
)

// Engine runs the fixed 12-point checklist
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Validate runs every check and reports pass/fail with itemized results.
// All checks run; the report is only clean when every one passes.
func (e *Engine) Validate(ctx context.Context, sql string, in Input) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Report{Passed: true}

	trimmed := strings.TrimSpace(sql)
	upper := strings.ToUpper(trimmed)

	e.check(r, "non_empty", trimmed != "", "SQL is empty")
	e.check(r, "statement_prefix",
		strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH"),
		"only SELECT and WITH statements are allowed")
	e.check(r, "single_statement", !strings.Contains(strings.TrimRight(trimmed, "; \t\n"), ";"),
		"multiple statements are not allowed")

	mutation := ""
	for _, p := range mutationPatterns {
		if p.MatchString(sql) {
			mutation = p.String()
			break
		}
	}
	e.check(r, "mutation_keywords", mutation == "",
		fmt.Sprintf("mutation pattern detected: %s", mutation))

	e.check(r, "union_injection", !unionRe.MatchString(sql),
		"UNION SELECT is not allowed")
	e.check(r, "comment_injection", !commentRe.MatchString(sql),
		"SQL comments are not allowed in rendered queries")
	e.check(r, "tautology", !tautologyRe.MatchString(sql),
		"tautology predicate detected")
	e.check(r, "file_access", !fileRe.MatchString(sql),
		"file access function detected")
	e.check(r, "timing_attack", !timingRe.MatchString(sql),
		"timing function detected")
	e.check(r, "system_tables", !systemRe.MatchString(sql),
		"system catalog access detected")

	e.checkTables(r, sql, in)
	e.checkTenantFilter(r, sql, in)

	return r, nil
}

func (e *Engine) check(r *Report, name string, ok bool, details string) {
	if ok {
		r.Checks = append(r.Checks, CheckResult{Name: name, Passed: true})
		return
	}
	r.Passed = false
	r.Checks = append(r.Checks, CheckResult{Name: name, Passed: false, Details: details})
	r.Violations = append(r.Violations, fmt.Sprintf("%s: %s", name, details))
}

// checkTables enforces the table allow-list: every FROM/JOIN reference must
// be a declared table or a declared join, and joined tables must be on the
// join allow-list specifically.
func (e *Engine) checkTables(r *Report, sql string, in Input) {
	allowed := make(map[string]bool, len(in.AllowedTables)+len(in.AllowedJoins))
	for _, t := range in.AllowedTables {
		allowed[strings.ToLower(t)] = true
	}
	joinable := make(map[string]bool, len(in.AllowedJoins))
	for _, t := range in.AllowedJoins {
		t = strings.ToLower(t)
		allowed[t] = true
		joinable[t] = true
	}
	// A table the template itself reads may also appear in a JOIN clause
	for _, t := range in.AllowedTables {
		joinable[strings.ToLower(t)] = true
	}

	var unknown []string
	for _, m := range fromJoinRe.FindAllStringSubmatch(sql, -1) {
		if name := strings.ToLower(m[2]); !allowed[name] {
			unknown = append(unknown, name)
		}
	}
	e.check(r, "table_allowlist", len(unknown) == 0,
		fmt.Sprintf("tables not on allow-list: %s", strings.Join(unknown, ", ")))

	var badJoins []string
	for _, m := range joinOnlyRe.FindAllStringSubmatch(sql, -1) {
		if name := strings.ToLower(m[1]); !joinable[name] {
			badJoins = append(badJoins, name)
		}
	}
	e.check(r, "join_allowlist", len(badJoins) == 0,
		fmt.Sprintf("joins not on allow-list: %s", strings.Join(badJoins, ", ")))
}

// checkTenantFilter requires the literal tenant UUID and a company_id
// predicate when a company id is in scope
func (e *Engine) checkTenantFilter(r *Report, sql string, in Input) {
	if in.CompanyID == "" {
		r.Checks = append(r.Checks, CheckResult{Name: "tenant_filter", Passed: true})
		return
	}
	ok := strings.Contains(strings.ToLower(sql), strings.ToLower(in.CompanyID)) &&
		tenantColRe.MatchString(sql)
	e.check(r, "tenant_filter", ok,
		fmt.Sprintf("query is missing the tenant filter for company %s", in.CompanyID))
}
