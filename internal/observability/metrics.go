package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "resume_rag"

// Metrics holds the Prometheus collectors for the retrieval engine.
// All record methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	embeddingCalls     *prometheus.CounterVec
	embeddingFallbacks *prometheus.CounterVec
	embeddingLatency   *prometheus.HistogramVec
	rewriteCalls       *prometheus.CounterVec
	rewriteDegraded    *prometheus.CounterVec
	rewriteLatency     *prometheus.HistogramVec
	requests           *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	vectorStoreSize    prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry. Go runtime and
// process collectors are registered as well.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	buckets := []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60}

	m := &Metrics{
		registry: registry,
		embeddingCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "embedding",
			Name:      "calls_total",
			Help:      "Embedding provider calls by outcome",
		}, []string{"model", "status"}),
		embeddingFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "embedding",
			Name:      "fallbacks_total",
			Help:      "Times a component degraded to zero vectors or keyword scoring",
		}, []string{"component", "reason"}),
		embeddingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "embedding",
			Name:      "latency_seconds",
			Help:      "Embedding provider call latency",
			Buckets:   buckets,
		}, []string{"model"}),
		rewriteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "rewrite",
			Name:      "calls_total",
			Help:      "Text generation calls by outcome",
		}, []string{"model", "status"}),
		rewriteDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "rewrite",
			Name:      "degraded_total",
			Help:      "Rewrite responses replaced by an empty outcome",
		}, []string{"reason"}),
		rewriteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "rewrite",
			Name:      "latency_seconds",
			Help:      "Text generation call latency",
			Buckets:   buckets,
		}, []string{"model"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   buckets,
		}, []string{"method", "route"}),
		vectorStoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "vectorstore",
			Name:      "items",
			Help:      "Items in the vector store collection",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.embeddingCalls,
		m.embeddingFallbacks,
		m.embeddingLatency,
		m.rewriteCalls,
		m.rewriteDegraded,
		m.rewriteLatency,
		m.requests,
		m.requestLatency,
		m.vectorStoreSize,
	)
	return m
}

// RecordEmbeddingCall records one embedding provider call.
func (m *Metrics) RecordEmbeddingCall(model string, latency time.Duration, err error) {
	if m == nil {
		return
	}
	m.embeddingCalls.WithLabelValues(model, status(err)).Inc()
	m.embeddingLatency.WithLabelValues(model).Observe(latency.Seconds())
}

// RecordEmbeddingFallback records a degradation to zero vectors or keyword scoring.
func (m *Metrics) RecordEmbeddingFallback(component, reason string) {
	if m == nil {
		return
	}
	m.embeddingFallbacks.WithLabelValues(component, reason).Inc()
}

// RecordRewriteCall records one text generation call.
func (m *Metrics) RecordRewriteCall(model string, latency time.Duration, err error) {
	if m == nil {
		return
	}
	m.rewriteCalls.WithLabelValues(model, status(err)).Inc()
	m.rewriteLatency.WithLabelValues(model).Observe(latency.Seconds())
}

// RecordRewriteDegraded records a rewrite response that could not be used.
func (m *Metrics) RecordRewriteDegraded(reason string) {
	if m == nil {
		return
	}
	m.rewriteDegraded.WithLabelValues(reason).Inc()
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(method, route string, code int, latency time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, httpCode(code)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// SetVectorStoreSize sets the current collection size.
func (m *Metrics) SetVectorStoreSize(n int) {
	if m == nil {
		return
	}
	m.vectorStoreSize.Set(float64(n))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler. A nil Metrics serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func httpCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
