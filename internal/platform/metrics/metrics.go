// Package metrics registers the Prometheus instruments for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ConsentGrants       prometheus.Counter
	ConsentRevocations  prometheus.Counter
	AccessesLogged      prometheus.Counter
	DigestStores        prometheus.Counter
	DigestVerifications *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on the given registerer; tests pass a fresh registry so
// repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConsentGrants: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_consent_grants_total",
			Help: "Total number of consent grants committed",
		}),
		ConsentRevocations: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_consent_revocations_total",
			Help: "Total number of consent revocations committed",
		}),
		AccessesLogged: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_access_entries_total",
			Help: "Total number of access log entries appended",
		}),
		DigestStores: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_digest_stores_total",
			Help: "Total number of integrity digest stores and updates",
		}),
		DigestVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_digest_verifications_total",
			Help: "Total number of digest verifications by result",
		}, []string{"result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveVerification records one verification outcome.
func (m *Metrics) ObserveVerification(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.DigestVerifications.WithLabelValues(result).Inc()
}
