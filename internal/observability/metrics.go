// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Search metrics
	SearchesTotal   prometheus.Counter
	SearchDuration  prometheus.Histogram
	SeriesScored    prometheus.Counter
	EmptyResults    *prometheus.CounterVec // by reason: short_stroke, empty_corpus, no_matches
	MatchesReturned prometheus.Histogram

	// Corpus metrics
	CorpusSeries   prometheus.Gauge
	CorpusPeriods  prometheus.Gauge
	CorpusRebuilds prometheus.Counter

	// Ingestion metrics
	RecordsIngested   prometheus.Counter
	RecordsDuplicate  prometheus.Counter
	IngestErrors      prometheus.Counter
	LastIngestSuccess prometheus.Gauge
}

// Empty-result reasons.
const (
	ReasonShortStroke = "short_stroke"
	ReasonEmptyCorpus = "empty_corpus"
	ReasonNoMatches   = "no_matches"
)

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sketchmatch"
	}

	return &Metrics{
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of pattern searches run",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Pattern search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SeriesScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "series_scored_total",
			Help:      "Total number of series scored with DTW",
		}),
		EmptyResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "empty_results_total",
			Help:      "Total number of searches returning no matches",
		}, []string{"reason"}),
		MatchesReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "matches_returned",
			Help:      "Number of matches returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		CorpusSeries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "series",
			Help:      "Number of series in the current corpus index",
		}),
		CorpusPeriods: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "periods",
			Help:      "Number of periods on the corpus period axis",
		}),
		CorpusRebuilds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "rebuilds_total",
			Help:      "Total number of corpus index rebuilds",
		}),
		RecordsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_total",
			Help:      "Total number of sales records ingested",
		}),
		RecordsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "duplicates_total",
			Help:      "Total number of duplicate records skipped during ingest",
		}),
		IngestErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingest failures",
		}),
		LastIngestSuccess: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful ingest",
		}),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
