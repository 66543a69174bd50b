package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the chatflow collectors on its own registry so several
// servers (and tests) can live in one process.
type Recorder struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	validations *prometheus.CounterVec
	issues      prometheus.Histogram
	exports     *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_operations_total",
				Help: "Flow operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatflow_operation_duration_seconds",
				Help:    "Duration of flow operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_validations_total",
				Help: "Validation runs by result",
			},
			[]string{"result"},
		),
		issues: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatflow_validation_issues",
			Help:    "Diagnostics reported per validation run",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_exports_total",
				Help: "Export attempts by result",
			},
			[]string{"result"},
		),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.operations, r.duration, r.validations, r.issues, r.exports,
	)
	return r
}

// Operation records one finished operation. err decides the outcome label.
func (r *Recorder) Operation(name string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.operations.WithLabelValues(name, outcome).Inc()
	r.duration.WithLabelValues(name).Observe(took.Seconds())
}

// Validation records a validator run.
func (r *Recorder) Validation(valid bool, issues int) {
	r.validations.WithLabelValues(result(valid)).Inc()
	r.issues.Observe(float64(issues))
}

// Export records an export attempt.
func (r *Recorder) Export(ok bool) {
	r.exports.WithLabelValues(result(ok)).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func result(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}
