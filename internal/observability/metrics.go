// internal/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch metrics. Registered on the default registry so an embedding service
// exposing /metrics picks them up without extra wiring.
var (
	TenantsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gdap_consent_tenants_total",
		Help: "Tenants processed by the bulk consent orchestrator, by outcome.",
	}, []string{"outcome"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gdap_token_refreshes_total",
		Help: "Refresh-token grants attempted, by result.",
	}, []string{"result"})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gdap_consent_batch_seconds",
		Help:    "Wall time of a whole consent batch.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
