package handler

import (
	"net/http"

	"github.com/teei/insights-nlq/internal/catalog"
	"github.com/teei/insights-nlq/internal/models"
)

const version = "1.0.0"

// HealthHandler handles GET /health. The engine has no external
// dependencies to probe; an empty catalog is the one startup defect worth
// reporting.
type HealthHandler struct {
	catalog *catalog.Catalog
}

func NewHealthHandler(c *catalog.Catalog) *HealthHandler {
	return &HealthHandler{catalog: c}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if h.catalog.Len() == 0 {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, code, models.HealthResponse{
		Status:        status,
		Version:       version,
		TemplateCount: h.catalog.Len(),
	})
}
