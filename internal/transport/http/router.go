// Package http assembles the chi router: global middleware chain, feature
// handler mounts, and the operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"repute/internal/platform/metrics"
	"repute/internal/platform/middleware"
	"repute/pkg/clock"
	"repute/pkg/platform/httputil"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of a backing resource.
type HealthChecker func() error

// NewRouter builds the full router. Mutating verbs advance the logical clock
// exactly once per request, before any handler runs.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, clk *clock.Logical,
	validator middleware.TokenValidator, health map[string]HealthChecker,
	handlers ...Registrar) chi.Router {

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", handleHealth(health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(validator, logger))
		r.Use(middleware.TickClock(clk))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
