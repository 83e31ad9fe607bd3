package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "aws_processing"

// Metrics holds the Prometheus counters and histograms for a processing run.
// Each Metrics owns its registry, so a batch job can push it and tests can
// create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	LinesParsed      prometheus.Counter
	LinesRejected    prometheus.Counter
	FieldDiagnostics *prometheus.CounterVec // labels: kind={unit_mismatch,unrecognized_unit}
	MissingValues    *prometheus.CounterVec // labels: variable
	QCFlags          *prometheus.CounterVec // labels: variable, flag
	FilesWritten     prometheus.Counter
	ObservationsSent prometheus.Counter

	RunDuration prometheus.Histogram
}

// NewMetrics creates all processing metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LinesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_parsed_total",
			Help:      "Raw station lines parsed into records.",
		}),
		LinesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_rejected_total",
			Help:      "Raw station lines that failed to parse.",
		}),
		FieldDiagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_diagnostics_total",
			Help:      "Non-fatal field problems found while parsing, by kind.",
		}, []string{"kind"}),
		MissingValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_values_total",
			Help:      "Timesteps with no value for a variable, written as fill values.",
		}, []string{"variable"}),
		QCFlags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qc_flags_total",
			Help:      "QC flag values assigned, by variable and flag code.",
		}, []string{"variable", "flag"}),
		FilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "netCDF files written.",
		}),
		ObservationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Observations published to the Kafka sink.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete raw file to netCDF run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	m.registry.MustRegister(
		m.LinesParsed,
		m.LinesRejected,
		m.FieldDiagnostics,
		m.MissingValues,
		m.QCFlags,
		m.FilesWritten,
		m.ObservationsSent,
		m.RunDuration,
	)

	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Push sends all metrics to a Prometheus Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
