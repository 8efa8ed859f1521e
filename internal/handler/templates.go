package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teei/insights-nlq/internal/catalog"
	"github.com/teei/insights-nlq/internal/models"
)

// TemplatesHandler lists the metric catalog. Raw template SQL stays private;
// only the safety envelope and display metadata are exposed.
type TemplatesHandler struct {
	catalog *catalog.Catalog
}

func NewTemplatesHandler(c *catalog.Catalog) *TemplatesHandler {
	return &TemplatesHandler{catalog: c}
}

// List handles GET /api/v1/templates
func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	templates := h.catalog.List()
	out := make([]models.TemplateSummary, 0, len(templates))
	for _, t := range templates {
		out = append(out, summarize(t))
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"templates": out,
	})
}

// Get handles GET /api/v1/templates/{template_id}
func (h *TemplatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "template_id")
	t, ok := h.catalog.Get(id)
	if !ok {
		models.WriteError(w, http.StatusNotFound, "unknown template: "+id)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"template": summarize(t),
	})
}

func summarize(t *catalog.MetricTemplate) models.TemplateSummary {
	return models.TemplateSummary{
		ID:                   t.ID,
		DisplayName:          t.DisplayName,
		Description:          t.Description,
		Category:             t.Category,
		EstimatedComplexity:  string(t.EstimatedComplexity),
		MaxTimeWindowDays:    t.MaxTimeWindowDays,
		MaxResultRows:        t.MaxResultRows,
		RequiresTenantFilter: t.RequiresTenantFilter,
		AllowedTimeRanges:    t.AllowedTimeRanges,
		AllowedGroupBy:       t.AllowedGroupBy,
		CacheTTLSeconds:      t.CacheTTLSeconds,
	}
}
