package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics owns the process Prometheus registry and the collectors the
// service records into. It is built once at startup and passed by reference.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	transcriptionsTotal   *prometheus.CounterVec
	transcriptionDuration *prometheus.HistogramVec
	cacheLookupsTotal     *prometheus.CounterVec
}

// New builds the registry with standard process collectors plus the
// service-specific ones.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audioscribe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed, by method, route and status code.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "audioscribe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		transcriptionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audioscribe",
			Subsystem: "transcription",
			Name:      "runs_total",
			Help:      "Transcription runs, by provider and outcome.",
		}, []string{"provider", "status"}),
		transcriptionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "audioscribe",
			Subsystem: "transcription",
			Name:      "duration_seconds",
			Help:      "Wall time spent inside the transcription provider.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"provider"}),
		cacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audioscribe",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Transcript cache lookups, by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records one finished HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveTranscription records one provider run.
func (m *Metrics) ObserveTranscription(provider string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.transcriptionsTotal.WithLabelValues(provider, status).Inc()
	m.transcriptionDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a transcript cache lookup outcome.
func (m *Metrics) ObserveCacheLookup(outcome string) {
	m.cacheLookupsTotal.WithLabelValues(outcome).Inc()
}
