// Package metrics exposes the Prometheus collectors for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCount counts HTTP requests by method, endpoint and status.
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP Requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// RequestLatency observes request duration by method and endpoint.
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP Request Latency",
		},
		[]string{"method", "endpoint"},
	)

	// ApiKeyUsage counts accepted requests per partner company.
	ApiKeyUsage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_key_usage_total",
			Help: "API Key Usage",
		},
		[]string{"company"},
	)

	// ActiveApiKeys tracks the number of non-revoked keys.
	ActiveApiKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_api_keys",
			Help: "Number of active API keys",
		},
	)
)
