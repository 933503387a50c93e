package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// normalization pipeline.
type Metrics struct {
	RowsExtracted   *prometheus.CounterVec // label: source={telemetry,tabular}
	RowsNormalized  *prometheus.CounterVec // label: source={telemetry,tabular}
	JoinMisses      prometheus.Counter
	RecordsStored   prometheus.Counter
	PipelineRunning prometheus.Gauge

	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsExtracted,
		m.RowsNormalized,
		m.JoinMisses,
		m.RecordsStored,
		m.PipelineRunning,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "rows_extracted_total",
			Help:      "Raw rows read per source.",
		}, []string{"source"}),
		RowsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "rows_normalized_total",
			Help:      "Canonical observations produced per source.",
		}, []string{"source"}),
		JoinMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "station_join_misses_total",
			Help:      "Telemetry rows whose station had no directory entry.",
		}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "records_stored_total",
			Help:      "Serialized records written to the load-ready sink.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_etl",
			Name:      "pipeline_running",
			Help:      "1 while a batch run is active, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete normalize-unify-serialize-store run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}
