package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/Chapstick53/phone-sms-api/internal/public_api_service/middleware"
)

// RouterConfig carries the knobs of NewRouter.
type RouterConfig struct {
	ThrottleLimit   int
	ThrottleBacklog int
	ThrottleTimeout time.Duration
	AdminSecret     string
	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
}

// NewRouter assembles the public API: /api/* for clients, /api/admin/* behind
// a bearer JWT, and /metrics outside the throttle.
func NewRouter(svc ScraperService, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetricsMiddleware)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	handler := NewScraperHandler(svc, validator.New(validator.WithRequiredStructEnabled()), logger)

	r.Route("/api", func(api chi.Router) {
		if cfg.ThrottleLimit > 0 {
			api.Use(chimiddleware.ThrottleBacklog(cfg.ThrottleLimit, cfg.ThrottleBacklog, cfg.ThrottleTimeout))
		}
		handler.RegisterRoutes(api)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.AdminAuthMiddleware(cfg.AdminSecret, logger))
			handler.RegisterAdminRoutes(admin)
		})
	})
	return r
}
