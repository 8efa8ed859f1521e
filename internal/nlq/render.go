package nlq

import (
	"regexp"
	"strings"

	"github.com/teei/insights-nlq/internal/catalog"
)

// TemplateContext supplies values for template placeholders
type TemplateContext map[string]any

// RenderedQuery is the output of a successful render
type RenderedQuery struct {
	SQL        string
	Parameters map[string]string // placeholder name -> sanitized literal
}

var (
	placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// injectionRe is the post-render battery: mutation statement chaining and
// UNION-based exfiltration. A second line of defense, independent of the
// safety guardrail engine.
var injectionRe = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*DROP\b`),
	regexp.MustCompile(`(?i);\s*DELETE\b`),
	regexp.MustCompile(`(?i);\s*UPDATE\b`),
	regexp.MustCompile(`(?i)\bUNION\s+SELECT\b`),
}

// Renderer substitutes {{placeholder}} values into a template with
// type-aware sanitization. Stateless and safe for concurrent use.
type Renderer struct {
	declared map[string]ParamKind // per-template declared kinds, may be nil
}

// NewRenderer builds a renderer. declared maps placeholder names to sanitizer
// kinds and takes precedence over name-based inference.
func NewRenderer(declared map[string]string) *Renderer {
	r := &Renderer{}
	if len(declared) > 0 {
		r.declared = make(map[string]ParamKind, len(declared))
		for name, s := range declared {
			if k, ok := ParseKind(s); ok {
				r.declared[name] = k
			}
		}
	}
	return r
}

func (r *Renderer) kindFor(name string) ParamKind {
	if k, ok := r.declared[name]; ok {
		return k
	}
	return InferKind(name)
}

// Render substitutes every {{name}} placeholder in tmpl from ctx, strips
// comment lines, and normalizes whitespace. A placeholder without a context
// value aborts the render.
func (r *Renderer) Render(tmpl string, ctx TemplateContext) (*RenderedQuery, error) {
	params := make(map[string]string)
	var renderErr error

	sql := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		if renderErr != nil {
			return m
		}
		name := placeholderRe.FindStringSubmatch(m)[1]
		if lit, done := params[name]; done {
			return lit
		}
		v, ok := ctx[name]
		if !ok {
			renderErr = newError(ErrMissingParameter, "no value for placeholder {{%s}}", name)
			return m
		}
		lit, err := sanitizeValue(name, r.kindFor(name), v)
		if err != nil {
			renderErr = err
			return m
		}
		params[name] = lit
		return lit
	})
	if renderErr != nil {
		return nil, renderErr
	}

	sql = stripCommentLines(sql)
	sql = strings.TrimSpace(whitespaceRe.ReplaceAllString(sql, " "))

	return &RenderedQuery{SQL: sql, Parameters: params}, nil
}

// stripCommentLines drops lines that begin with a -- comment marker
func stripCommentLines(sql string) string {
	lines := strings.Split(sql, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// ValidateRenderedSQL is the post-render structural check: no leftover
// placeholders, every expected table present in a FROM/JOIN clause, and none
// of the forbidden mutation/union patterns.
func ValidateRenderedSQL(sql string, expectedTables []string) error {
	if m := placeholderRe.FindString(sql); m != "" {
		return newError(ErrRenderIncomplete, "unsubstituted placeholder %s remains in rendered SQL", m)
	}

	present := make(map[string]bool)
	for _, t := range catalog.ExtractTables(sql) {
		present[t] = true
	}
	for _, want := range expectedTables {
		if !present[strings.ToLower(want)] {
			return newError(ErrExpectedTableMissing, "rendered SQL does not reference expected table %q", want)
		}
	}

	for _, re := range injectionRe {
		if re.MatchString(sql) {
			return newError(ErrInjectionPattern, "rendered SQL matches forbidden pattern %s", re.String())
		}
	}
	return nil
}
