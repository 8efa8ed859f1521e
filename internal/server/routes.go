package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/teei/insights-nlq/internal/catalog"
	"github.com/teei/insights-nlq/internal/guardrail"
	"github.com/teei/insights-nlq/internal/handler"
	"github.com/teei/insights-nlq/internal/middleware"
	"github.com/teei/insights-nlq/internal/nlq"
)

func (s *Server) setupRoutes() (http.Handler, error) {
	cfg := s.cfg

	// ─── Catalog ────────────────────────────────────────────────────────────────
	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		var err error
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.CatalogPath).Int("templates", cat.Len()).Msg("catalog loaded")
	} else {
		cat = catalog.Default()
		log.Info().Int("templates", cat.Len()).Msg("using built-in catalog")
	}

	// ─── Core ───────────────────────────────────────────────────────────────────
	guard := guardrail.NewEngine()
	gen := nlq.NewGenerator(cat, guard)
	audit := guardrail.NewAuditLogger(cfg.EnableAuditLogging)

	log.Info().
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("validate_safety", cfg.ValidateSafety).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Int("default_limit", cfg.DefaultResultLimit).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("auth enabled but no API keys configured - all API requests will be rejected")
	}
	if !cfg.ValidateSafety {
		log.Warn().Msg("safety validation disabled - generated queries bypass the guardrail checklist")
	}

	// ─── Handlers ───────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(cat)
	templatesH := handler.NewTemplatesHandler(cat)
	queryH := handler.NewQueryHandler(gen, audit, cfg.DefaultResultLimit, cfg.ValidateSafety)

	// ─── Router ─────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Get("/templates", templatesH.List)
			r.Get("/templates/{template_id}", templatesH.Get)

			r.Route("/query", func(r chi.Router) {
				r.Post("/generate", queryH.Generate)
				r.Post("/validate", queryH.Validate)
				r.Post("/preview", queryH.Preview)
			})
		})
	})

	return r, nil
}
