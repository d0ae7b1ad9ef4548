package convert

import (
	"github.com/c360studio/semconv/elements"
	"github.com/prometheus/client_golang/prometheus"
)

// Projection outcomes recorded by Metrics.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Metrics records projection counts, failures by kind, and how many
// properties each projection had to keep as extended properties.
type Metrics struct {
	projections *prometheus.CounterVec
	failures    *prometheus.CounterVec
	extended    *prometheus.HistogramVec
}

// NewMetrics creates the projection metrics and registers them with reg.
// A nil registerer leaves the collectors unregistered, which tests use.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "total",
			Help:      "Projections by bean shape and outcome.",
		}, []string{"shape", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "failures_total",
			Help:      "Projection failures by bean shape and failure kind.",
		}, []string{"shape", "kind"}),
		extended: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "extended_properties",
			Help:      "Number of properties harvested as extended properties per projection.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}, []string{"shape"}),
	}
	if reg != nil {
		reg.MustRegister(m.projections, m.failures, m.extended)
	}
	return m
}

func (m *Metrics) observe(shape elements.Shape, outcome string) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(string(shape), outcome).Inc()
}

func (m *Metrics) observeFailure(shape elements.Shape, kind Kind) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(shape), string(kind)).Inc()
}

func (m *Metrics) observeExtended(shape elements.Shape, n int) {
	if m == nil {
		return
	}
	m.extended.WithLabelValues(string(shape)).Observe(float64(n))
}
