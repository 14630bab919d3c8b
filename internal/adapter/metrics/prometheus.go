// Package metrics exposes task measurements in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vertextoedge/netfetch/internal/port"
)

// Prometheus implements port.Metrics on its own registry
type Prometheus struct {
	registry *prometheus.Registry

	// tasksTotal counts finished tasks by kind and outcome
	tasksTotal *prometheus.CounterVec
	// bytesTotal counts body bytes received by kind
	bytesTotal *prometheus.CounterVec
	// durationSeconds tracks task run time
	durationSeconds *prometheus.HistogramVec
	// inProgress tracks running tasks
	inProgress *prometheus.GaugeVec
}

// Ensure Prometheus implements port.Metrics
var _ port.Metrics = (*Prometheus)(nil)

// New creates the collectors under namespace and registers them, together
// with the Go runtime and process collectors, on a fresh registry.
func New(namespace string) *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
	}

	m.tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Finished tasks by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	m.bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Body bytes received by kind",
		},
		[]string{"kind"},
	)

	// Buckets: 100ms .. ~27min
	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Task run time",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		},
		[]string{"kind"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_progress",
			Help:      "Tasks currently running",
		},
		[]string{"kind"},
	)

	m.registry.MustRegister(
		m.tasksTotal,
		m.bytesTotal,
		m.durationSeconds,
		m.inProgress,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// TaskStarted increments the in-progress gauge
func (m *Prometheus) TaskStarted(kind string) {
	m.inProgress.WithLabelValues(kind).Inc()
}

// TaskFinished records the outcome and run time of a task
func (m *Prometheus) TaskFinished(kind, outcome string, seconds float64) {
	m.inProgress.WithLabelValues(kind).Dec()
	m.tasksTotal.WithLabelValues(kind, outcome).Inc()
	m.durationSeconds.WithLabelValues(kind).Observe(seconds)
}

// BytesTransferred adds n received bytes
func (m *Prometheus) BytesTransferred(kind string, n int64) {
	if n <= 0 {
		return
	}
	m.bytesTotal.WithLabelValues(kind).Add(float64(n))
}

// Registry returns the registry holding the collectors
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the exposition format
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
