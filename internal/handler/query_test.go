package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/teei/insights-nlq/internal/catalog"
	"github.com/teei/insights-nlq/internal/guardrail"
	"github.com/teei/insights-nlq/internal/handler"
	"github.com/teei/insights-nlq/internal/nlq"
)

const testCompanyID = "12345678-1234-1234-1234-123456789012"

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	cat := catalog.Default()
	gen := nlq.NewGenerator(cat, guardrail.NewEngine())
	query := handler.NewQueryHandler(gen, guardrail.NewAuditLogger(false), 100, true)
	templates := handler.NewTemplatesHandler(cat)
	health := handler.NewHealthHandler(cat)

	r := chi.NewRouter()
	r.Get("/health", health.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/templates", templates.List)
		r.Get("/templates/{template_id}", templates.Get)
		r.Post("/query/generate", query.Generate)
		r.Post("/query/validate", query.Validate)
		r.Post("/query/preview", query.Preview)
	})
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func generateBody(templateID string) map[string]any {
	return map[string]any{
		"company_id":  testCompanyID,
		"template_id": templateID,
		"time_range":  map[string]any{"type": "last_30d"},
	}
}

// ─── Generate ─────────────────────────────────────────────────────────────────

func TestGenerateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/query/generate", generateBody("volunteer_hours_by_team"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		Result struct {
			SQL     string `json:"sql"`
			Preview string `json:"preview"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if !strings.Contains(resp.Result.SQL, "'"+testCompanyID+"'") {
		t.Errorf("generated SQL missing tenant literal: %s", resp.Result.SQL)
	}
	if resp.Result.Preview == "" {
		t.Error("preview text missing from result")
	}
}

func TestGenerateEndpointUnknownTemplate(t *testing.T) {
	router := newTestRouter(t)
	rec := postJSON(t, router, "/api/v1/query/generate", generateBody("does_not_exist"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGenerateEndpointMissingCompany(t *testing.T) {
	router := newTestRouter(t)
	body := generateBody("volunteer_hours_by_team")
	delete(body, "company_id")

	rec := postJSON(t, router, "/api/v1/query/generate", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateEndpointMalformedCompany(t *testing.T) {
	router := newTestRouter(t)
	body := generateBody("volunteer_hours_by_team")
	body["company_id"] = "not-a-uuid"

	rec := postJSON(t, router, "/api/v1/query/generate", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateEndpointBadBody(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/generate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateEndpointRejectsDisallowedFilter(t *testing.T) {
	router := newTestRouter(t)
	body := generateBody("volunteer_hours_by_team")
	body["filters"] = map[string]string{"salary_band": "executive"}

	rec := postJSON(t, router, "/api/v1/query/generate", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body: %s", rec.Code, rec.Body.String())
	}
}

// ─── Validate and preview ─────────────────────────────────────────────────────

func TestValidateEndpointDryRun(t *testing.T) {
	router := newTestRouter(t)

	// Invalid intents still answer 200: the dry run reports, it does not fail
	body := generateBody("does_not_exist")
	rec := postJSON(t, router, "/api/v1/query/validate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp nlq.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid || len(resp.Errors) == 0 {
		t.Errorf("expected invalid result with errors, got %+v", resp)
	}

	rec = postJSON(t, router, "/api/v1/query/validate", generateBody("donation_totals"))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Valid {
		t.Errorf("valid intent reported invalid: %+v", resp)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/query/preview", generateBody("donation_totals"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status  string            `json:"status"`
		Preview *nlq.QueryPreview `json:"preview"`
		Cost    *nlq.CostEstimate `json:"cost"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Preview == nil || resp.Preview.TimeRange != "Last 30 days" {
		t.Errorf("preview = %+v", resp.Preview)
	}
	if resp.Cost == nil || resp.Cost.EstimatedRows <= 0 {
		t.Errorf("cost = %+v", resp.Cost)
	}
}

// ─── Templates ────────────────────────────────────────────────────────────────

func TestTemplatesEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Templates []map[string]any `json:"templates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Templates) == 0 {
		t.Fatal("no templates listed")
	}
	for _, tmpl := range list.Templates {
		if _, leaked := tmpl["sql_template"]; leaked {
			t.Error("template SQL leaked through the listing")
		}
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/templates/donation_totals", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/templates/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template status = %d, want 404", rec.Code)
	}
}

// ─── Health ───────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status        string `json:"status"`
		TemplateCount int    `json:"template_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.TemplateCount == 0 {
		t.Errorf("health = %+v", resp)
	}
}
