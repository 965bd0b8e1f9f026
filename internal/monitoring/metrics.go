package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "antiproxy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "antiproxy_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "antiproxy_http_inflight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Dispatch metrics
	DispatchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "antiproxy_dispatch_attempts_total",
			Help: "Total number of upstream endpoint attempts",
		},
		[]string{"endpoint", "error_kind"},
	)

	DispatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "antiproxy_dispatch_outcomes_total",
			Help: "Terminal outcomes returned to callers, by kind",
		},
		[]string{"kind"},
	)

	DispatchInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "antiproxy_dispatch_inflight",
			Help: "Dispatch sequences currently holding the gate (0 or 1)",
		},
	)

	// Serialization metrics
	GateWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "antiproxy_gate_wait_seconds",
			Help:    "Time spent queued for the dispatch gate",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	RateLimitWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "antiproxy_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the minimum dispatch interval",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)
