// Package stats exposes the handful of Prometheus counters/histograms the
// ingest and query pipelines update, in the spirit of the teacher's own
// stats package (stats/target_stats.go) — a small, named set of
// counter/latency/size metrics rather than a generic catch-all.
package stats

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups every counter the core components touch. A single
// instance is constructed at startup and threaded through the ingest
// manager, query executor, and meta loader.
type Metrics struct {
	IngestLinesTotal      *prometheus.CounterVec
	IngestBytesTotal      *prometheus.CounterVec
	IngestFlushTotal      *prometheus.CounterVec
	IngestFlushErrors     *prometheus.CounterVec
	IngestFlushLatency    *prometheus.HistogramVec
	QueryLinesScanned     prometheus.Counter
	QueryObjectErrors     prometheus.Counter
	MetaReloadErrors      prometheus.Counter
}

// NewMetrics builds and registers every metric against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IngestLinesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minsql_ingest_lines_total",
			Help: "Lines appended to a log's ingest buffer.",
		}, []string{"log"}),
		IngestBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minsql_ingest_bytes_total",
			Help: "Bytes appended to a log's ingest buffer.",
		}, []string{"log"}),
		IngestFlushTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minsql_ingest_flush_total",
			Help: "Successful per-datastore MSL object writes.",
		}, []string{"log", "datastore"}),
		IngestFlushErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minsql_ingest_flush_errors_total",
			Help: "Failed per-datastore MSL object writes (best-effort, not retried).",
		}, []string{"log", "datastore"}),
		IngestFlushLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minsql_ingest_flush_latency_seconds",
			Help:    "Latency of a single datastore PUT during flush.",
			Buckets: prometheus.DefBuckets,
		}, []string{"log"}),
		QueryLinesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minsql_query_lines_scanned_total",
			Help: "Lines read and evaluated across all queries.",
		}),
		QueryObjectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minsql_query_object_errors_total",
			Help: "Object reads abandoned mid-query due to a transient error.",
		}),
		MetaReloadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minsql_meta_reload_errors_total",
			Help: "Meta objects skipped during a reload due to decode or kind errors.",
		}),
	}
	reg.MustRegister(
		m.IngestLinesTotal, m.IngestBytesTotal, m.IngestFlushTotal, m.IngestFlushErrors,
		m.IngestFlushLatency, m.QueryLinesScanned, m.QueryObjectErrors, m.MetaReloadErrors,
	)
	return m
}
