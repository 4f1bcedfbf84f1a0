// Package metrics exposes Prometheus collectors for analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple instances never
// collide on the global one.
type Metrics struct {
	registry      *prometheus.Registry
	analyses      *prometheus.CounterVec
	clusters      prometheus.Gauge
	notes         prometheus.Gauge
	summarizeTime *prometheus.HistogramVec
	notifyErrors  *prometheus.CounterVec
}

// New registers all collectors plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topicscout_analyses_total",
				Help: "Total number of analysis runs",
			},
			[]string{"mode", "status"},
		),
		clusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "topicscout_clusters",
			Help: "Clusters that passed the filter in the latest analysis",
		}),
		notes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "topicscout_notes",
			Help: "Notes considered by the latest analysis",
		}),
		summarizeTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topicscout_summarize_duration_seconds",
				Help:    "Time spent producing a report",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"summarizer"},
		),
		notifyErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topicscout_notify_failures_total",
				Help: "Notification deliveries that failed",
			},
			[]string{"sink"},
		),
	}
	m.registry.MustRegister(
		m.analyses,
		m.clusters,
		m.notes,
		m.summarizeTime,
		m.notifyErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAnalysis records one finished run. mode is "dry_run" or "full".
func (m *Metrics) ObserveAnalysis(mode string, err error, notes, clusters int) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.analyses.WithLabelValues(mode, status).Inc()
	if err == nil {
		m.notes.Set(float64(notes))
		m.clusters.Set(float64(clusters))
	}
}

// ObserveSummarize records how long a summarizer took.
func (m *Metrics) ObserveSummarize(summarizer string, d time.Duration) {
	if m == nil {
		return
	}
	m.summarizeTime.WithLabelValues(summarizer).Observe(d.Seconds())
}

// NotifyFailed counts a failed delivery for sink.
func (m *Metrics) NotifyFailed(sink string) {
	if m == nil {
		return
	}
	m.notifyErrors.WithLabelValues(sink).Inc()
}
