// internal/utils/metrics.go
package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "reelboard"

// APIMetrics holds the service's Prometheus collectors on a private registry
type APIMetrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	llmDuration     *prometheus.HistogramVec
	llmTokens       *prometheus.CounterVec
	errors          *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	wsClients       prometheus.Gauge
}

// NewAPIMetrics creates the collectors. Process and Go runtime collectors are
// included when withRuntime is true.
func NewAPIMetrics(withRuntime bool) *APIMetrics {
	reg := prometheus.NewRegistry()

	am := &APIMetrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Latency of generative provider calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider", "model", "outcome"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens reported by the provider.",
		}, []string{"provider", "model"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Errors by type and component.",
		}, []string{"type", "component"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "projects",
			Name:      "mutations_total",
			Help:      "Successful project mutations by operation.",
		}, []string{"operation"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected project websocket clients.",
		}),
	}

	reg.MustRegister(am.requests, am.requestDuration, am.llmDuration, am.llmTokens,
		am.errors, am.mutations, am.wsClients)
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return am
}

// Handler serves the Prometheus exposition format
func (am *APIMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(am.registry, promhttp.HandlerOpts{Registry: am.registry})
}

// Gatherer exposes the registry, mostly for tests
func (am *APIMetrics) Gatherer() prometheus.Gatherer {
	return am.registry
}

// RecordAPIRequest records one served HTTP request
func (am *APIMetrics) RecordAPIRequest(route, method string, statusCode int, duration time.Duration) {
	if am == nil {
		return
	}
	am.requests.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	am.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordLLMRequest records one provider call; outcome is "ok" or "error"
func (am *APIMetrics) RecordLLMRequest(provider, model, outcome string, tokensUsed int, duration time.Duration) {
	if am == nil {
		return
	}
	am.llmDuration.WithLabelValues(provider, model, outcome).Observe(duration.Seconds())
	if tokensUsed > 0 {
		am.llmTokens.WithLabelValues(provider, model).Add(float64(tokensUsed))
	}
}

func (am *APIMetrics) RecordError(errorType, component string) {
	if am == nil {
		return
	}
	am.errors.WithLabelValues(errorType, component).Inc()
}

func (am *APIMetrics) RecordProjectMutation(operation string) {
	if am == nil {
		return
	}
	am.mutations.WithLabelValues(operation).Inc()
}

// WebSocketConnected adjusts the connected-clients gauge by delta
func (am *APIMetrics) WebSocketConnected(delta int) {
	if am == nil {
		return
	}
	am.wsClients.Add(float64(delta))
}
