// Package httptransport wires the handler packages into one chi router.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auditHandler "medledger/internal/auditlog/handler"
	consentHandler "medledger/internal/consent/handler"
	integrityHandler "medledger/internal/integrity/handler"
	"medledger/internal/ledger"
	"medledger/internal/platform/metrics"
	"medledger/internal/platform/middleware"
)

// HealthChecker reports the status of an optional backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter wires all public endpoints plus /healthz and /metrics. health may
// be nil when no checkable dependency is configured.
func NewRouter(l *ledger.Ledger, m *metrics.Metrics, health HealthChecker, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.ContentTypeJSON)

	consentHandler.New(l, logger).Register(r)
	auditHandler.New(l, logger).Register(r)
	integrityHandler.New(l, logger).Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health.Health(req.Context()); err != nil {
				logger.WarnContext(req.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
