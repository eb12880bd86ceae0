package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weblave_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weblave_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	RelayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weblave_relay_requests_total",
			Help: "Total relay calls by outcome",
		},
		[]string{"outcome"}, // "ok" or an error kind
	)

	DocumentTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weblave_document_truncations_total",
			Help: "Attached documents whose encoding was cut to the content ceiling",
		},
	)

	// Chatbot metrics
	RuleResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weblave_rule_resolutions_total",
			Help: "Chatbot replies by source",
		},
		[]string{"source"}, // "rule", "ai" or "fallback"
	)

	SnippetsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weblave_snippets_generated_total",
			Help: "Total widget snippets generated",
		},
	)

	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weblave_widget_proxy_requests_total",
			Help: "Widget proxy requests by result",
		},
		[]string{"result"},
	)

	// Identity metrics
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weblave_auth_events_total",
			Help: "Identity operations by type and result",
		},
		[]string{"event", "result"},
	)
)
