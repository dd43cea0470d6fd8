package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/internal/auditlog"
	"medledger/internal/consent"
	"medledger/internal/integrity"
	"medledger/internal/ledger"
	"medledger/internal/platform/metrics"
	"medledger/pkg/platform/notify"
)

type staticHealth struct{ err error }

func (h staticHealth) Health(context.Context) error { return h.err }

func newRouter(t *testing.T, health HealthChecker) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(
		consent.NewService(consent.NewInMemoryStore()),
		integrity.NewService(integrity.NewInMemoryStore()),
		auditlog.NewService(auditlog.NewInMemoryStore()),
		notify.NopPublisher{},
		metrics.NewWith(prometheus.NewRegistry()),
		logger,
	)
	return NewRouter(l, metrics.NewWith(prometheus.NewRegistry()), health, logger)
}

func getHealthz(t *testing.T, router http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthzWithoutChecker(t *testing.T) {
	rec := getHealthz(t, newRouter(t, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthzReportsDependencyStatus(t *testing.T) {
	rec := getHealthz(t, newRouter(t, staticHealth{}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = getHealthz(t, newRouter(t, staticHealth{err: errors.New("connection refused")}))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, rec.Body.String())
}
