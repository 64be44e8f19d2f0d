// Package metrics exposes Prometheus metrics for allocation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "momentum"

// Registry holds all Prometheus metrics for the allocator
type Registry struct {
	registry *prometheus.Registry

	// Evaluation metrics
	Evaluations        prometheus.Counter
	EvaluationDuration prometheus.Histogram
	Outcomes           *prometheus.CounterVec
	Failures           *prometheus.CounterVec

	// Latest allocation state
	InvestedFraction prometheus.Gauge
	RawWeightSum     prometheus.Gauge
	Normalizations   prometheus.Counter
	TickerWeight     *prometheus.GaugeVec
}

// NewRegistry creates a registry with allocator and Go runtime collectors
func NewRegistry() *Registry {
	m := &Registry{
		registry: prometheus.NewRegistry(),

		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of allocation evaluations",
		}),

		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of the allocation decision in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticker_outcomes_total",
			Help:      "Per-ticker decisions by outcome",
		}, []string{"outcome"}),

		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_failures_total",
			Help:      "Failed evaluations by stage",
		}, []string{"stage"}),

		InvestedFraction: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "invested_fraction",
			Help:      "Sum of final weights of the latest allocation (0.0 to 1.0)",
		}),

		RawWeightSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "raw_weight_sum",
			Help:      "Sum of raw weights of the latest allocation before rescaling",
		}),

		Normalizations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalizations_total",
			Help:      "Evaluations whose raw weights exceeded 1 and were rescaled",
		}),

		TickerWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ticker_weight",
			Help:      "Final weight per ticker in the latest allocation",
		}, []string{"ticker"}),
	}

	m.registry.MustRegister(
		m.Evaluations,
		m.EvaluationDuration,
		m.Outcomes,
		m.Failures,
		m.InvestedFraction,
		m.RawWeightSum,
		m.Normalizations,
		m.TickerWeight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordEvaluation implements allocation.MetricsRecorder
func (m *Registry) RecordEvaluation(result *allocation.Result, elapsed time.Duration) {
	m.Evaluations.Inc()
	m.EvaluationDuration.Observe(elapsed.Seconds())

	for _, d := range result.Decisions {
		m.Outcomes.WithLabelValues(string(d.Outcome)).Inc()
	}

	// Tickers without an entry drop out of the gauge vector
	m.TickerWeight.Reset()
	for ticker, weight := range result.Weights() {
		m.TickerWeight.WithLabelValues(ticker).Set(weight)
	}

	m.InvestedFraction.Set(result.Sum)
	m.RawWeightSum.Set(result.RawSum)
	if result.Normalized {
		m.Normalizations.Inc()
	}
}

// RecordFailure implements allocation.MetricsRecorder
func (m *Registry) RecordFailure(stage string) {
	m.Failures.WithLabelValues(stage).Inc()
}

// Handler returns the HTTP handler serving the Prometheus exposition format
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests and custom exporters
func (m *Registry) Gatherer() prometheus.Gatherer {
	return m.registry
}
