package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/teei/insights-nlq/internal/guardrail"
	"github.com/teei/insights-nlq/internal/models"
	"github.com/teei/insights-nlq/internal/nlq"
)

// QueryHandler exposes the generation pipeline over HTTP. It never executes
// anything: the response carries SQL text, a preview and a cost estimate.
type QueryHandler struct {
	gen          *nlq.Generator
	audit        *guardrail.AuditLogger
	defaultLimit int
	skipSafety   bool
}

func NewQueryHandler(gen *nlq.Generator, audit *guardrail.AuditLogger, defaultLimit int, validateSafety bool) *QueryHandler {
	return &QueryHandler{
		gen:          gen,
		audit:        audit,
		defaultLimit: defaultLimit,
		skipSafety:   !validateSafety,
	}
}

// decode parses the request body and rejects malformed tenant ids before the
// pipeline runs. The renderer re-validates with its own compatibility regex.
func (h *QueryHandler) decode(w http.ResponseWriter, r *http.Request, req *models.GenerateRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if req.CompanyID != "" {
		if _, err := uuid.Parse(req.CompanyID); err != nil {
			models.WriteError(w, http.StatusBadRequest, "company_id is not a valid UUID")
			return false
		}
	}
	return true
}

func (h *QueryHandler) options(req *models.GenerateRequest) nlq.GenerateOptions {
	return nlq.GenerateOptions{
		CompanyID:            req.CompanyID,
		DefaultLimit:         h.defaultLimit,
		SkipSafetyValidation: h.skipSafety,
	}
}

// Generate handles POST /api/v1/query/generate
func (h *QueryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	result, err := h.gen.GenerateQuery(r.Context(), req.Intent(), h.options(&req))
	durMs := time.Since(start).Milliseconds()

	if err != nil {
		h.audit.LogGeneration(req.TemplateID, req.CompanyID, "", false, durMs, err.Error())
		models.WriteError(w, statusFor(err), err.Error())
		return
	}

	h.audit.LogGeneration(result.TemplateID, req.CompanyID, result.SQL, true, durMs, "")
	models.WriteJSON(w, http.StatusOK, models.GenerateResponse{Status: "success", Result: result})
}

// Validate handles POST /api/v1/query/validate, the non-executing dry run
func (h *QueryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.gen.ValidateQuery(r.Context(), req.Intent(), h.options(&req))
	models.WriteJSON(w, http.StatusOK, result)
}

// Preview handles POST /api/v1/query/preview: description plus cost
// estimate, no rendering and no guardrail round trip
func (h *QueryHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	preview, cost, err := h.gen.PreviewQuery(req.Intent(), h.options(&req))
	if err != nil {
		models.WriteError(w, statusFor(err), err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, models.PreviewResponse{Status: "success", Preview: preview, Cost: cost})
}

// statusFor maps the generation error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch nlq.KindOf(err) {
	case nlq.ErrUnknownTemplate:
		return http.StatusNotFound
	case nlq.ErrSafetyValidation:
		return http.StatusUnprocessableEntity
	case nlq.ErrMissingParameter, nlq.ErrInvalidUUID, nlq.ErrInvalidDate,
		nlq.ErrInvalidEnum, nlq.ErrInvalidNumber, nlq.ErrConstraintViolation:
		return http.StatusBadRequest
	case nlq.ErrRenderIncomplete, nlq.ErrExpectedTableMissing, nlq.ErrInjectionPattern:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
