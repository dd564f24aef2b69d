package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// normalization and scoring pipeline.
type Metrics struct {
	RowsIngested   prometheus.Counter
	RowsNormalized prometheus.Counter
	RowsExpanded   prometheus.Counter
	RowsSkipped    prometheus.Counter
	UnresolvedRows *prometheus.CounterVec // labels: stage={reconcile,expand,canonicalize}
	FilesSkipped   prometheus.Counter
	MergeConflicts prometheus.Counter

	FileProcessingDuration prometheus.Histogram
	PipelineRunning        prometheus.Gauge
	DatasetJurisdictions   prometheus.Gauge

	RecordsPublished prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsIngested,
		m.RowsNormalized,
		m.RowsExpanded,
		m.RowsSkipped,
		m.UnresolvedRows,
		m.FilesSkipped,
		m.MergeConflicts,
		m.FileProcessingDuration,
		m.PipelineRunning,
		m.DatasetJurisdictions,
		m.RecordsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "rows_ingested_total",
			Help:      "Raw rows read from source files.",
		}),
		RowsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "rows_normalized_total",
			Help:      "Rows reconciled onto the canonical field vocabulary.",
		}),
		RowsExpanded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "rows_expanded_total",
			Help:      "Single-jurisdiction rows produced by reference expansion.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "rows_skipped_total",
			Help:      "Rows skipped as layout headings or blank references.",
		}),
		UnresolvedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "unresolved_rows_total",
			Help:      "Row-level failures and review flags by pipeline stage.",
		}, []string{"stage"}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "files_skipped_total",
			Help:      "Source files skipped for lack of a column mapping.",
		}),
		MergeConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "merge_conflicts_total",
			Help:      "Field values discarded by the merge precedence rules.",
		}),
		FileProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lawatlas_etl",
			Name:      "file_processing_duration_seconds",
			Help:      "Duration of the reconcile-expand-canonicalize stages per source file.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lawatlas_etl",
			Name:      "pipeline_running",
			Help:      "1 while a batch run is in progress, 0 otherwise.",
		}),
		DatasetJurisdictions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lawatlas_etl",
			Name:      "dataset_jurisdictions",
			Help:      "Jurisdictions in the most recently built dataset.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lawatlas_etl",
			Name:      "records_published_total",
			Help:      "Visualization records published to the sink topic.",
		}),
	}
}
