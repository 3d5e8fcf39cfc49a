// Package metrics holds the Prometheus collectors for the service.
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

const namespace = "content_assistant"

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     *prometheus.CounterVec

	// Pipeline metrics
	FetchesTotal       *prometheus.CounterVec
	AnalysesTotal      prometheus.Counter
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	RecordsSaved       *prometheus.CounterVec
}

// New creates the collectors on a private registry, so several instances can
// coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),
		RateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "URL fetches by outcome",
			},
			[]string{"outcome"},
		),
		AnalysesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Spider-graph analyses run",
			},
		),
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Content tasks run through the LLM by task and outcome",
			},
			[]string{"task", "outcome"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time spent in LLM calls per task",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"task"},
		),
		RecordsSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_saved_total",
				Help:      "Result log writes by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveRateLimited records a rejected request.
func (m *Metrics) ObserveRateLimited(path string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(path).Inc()
}

// ObserveFetch records a fetch outcome.
func (m *Metrics) ObserveFetch(ok bool) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome(ok)).Inc()
}

// ObserveAnalysis records a completed analysis.
func (m *Metrics) ObserveAnalysis() {
	if m == nil {
		return
	}
	m.AnalysesTotal.Inc()
}

// ObserveGeneration records one content task run.
func (m *Metrics) ObserveGeneration(task string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(task, outcome(ok)).Inc()
	m.GenerationDuration.WithLabelValues(task).Observe(d.Seconds())
}

// ObserveSave records a result log write.
func (m *Metrics) ObserveSave(ok bool) {
	if m == nil {
		return
	}
	m.RecordsSaved.WithLabelValues(outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
