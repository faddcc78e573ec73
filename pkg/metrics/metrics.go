// Package metrics defines the Prometheus metric collectors used across the
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	WordsIndexedTotal    *prometheus.CounterVec
	IndexOperationsTotal *prometheus.CounterVec
	IndexBuildDuration   *prometheus.HistogramVec
	IndexHeight          *prometheus.GaugeVec
	IndexWords           *prometheus.GaugeVec
	AVLRotationsTotal    *prometheus.CounterVec
	CodecOperationsTotal *prometheus.CounterVec
	CodecBytesTotal      *prometheus.CounterVec
	CodecCacheHitsTotal  prometheus.Counter
	CodecCacheMisses     prometheus.Counter
	CodecCacheBreaker    prometheus.Gauge
	IngestMessagesTotal  *prometheus.CounterVec
}

// New creates all collectors and registers them with reg. A nil reg means
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		WordsIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "words_indexed_total",
				Help: "Total word occurrences inserted, by tree variant.",
			},
			[]string{"variant"},
		),
		IndexOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_operations_total",
				Help: "Index operations by variant, operation, and result (hit, miss, ok).",
			},
			[]string{"variant", "op", "result"},
		),
		IndexBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "index_build_duration_seconds",
				Help:    "Time spent inserting one batch of text, by tree variant.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"variant"},
		),
		IndexHeight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "index_tree_height",
				Help: "Current tree height, by variant.",
			},
			[]string{"variant"},
		),
		IndexWords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "index_distinct_words",
				Help: "Current number of distinct words, by variant.",
			},
			[]string{"variant"},
		),
		AVLRotationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avl_rotations_total",
				Help: "AVL rebalancing cases applied (ll, rr, lr, rl).",
			},
			[]string{"kind"},
		),
		CodecOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codec_operations_total",
				Help: "Huffman codec operations by op (compress, decompress) and status.",
			},
			[]string{"op", "status"},
		),
		CodecBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codec_bytes_total",
				Help: "Bytes consumed and produced by the codec.",
			},
			[]string{"op", "direction"},
		),
		CodecCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "codec_cache_hits_total",
				Help: "Total number of compressed-container cache hits.",
			},
		),
		CodecCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "codec_cache_misses_total",
				Help: "Total number of compressed-container cache misses.",
			},
		),
		CodecCacheBreaker: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "codec_cache_breaker_state",
				Help: "Redis cache circuit breaker state: 0 closed, 1 open, 2 half-open.",
			},
		),
		IngestMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_messages_total",
				Help: "Kafka text documents processed, by status.",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.WordsIndexedTotal,
		m.IndexOperationsTotal,
		m.IndexBuildDuration,
		m.IndexHeight,
		m.IndexWords,
		m.AVLRotationsTotal,
		m.CodecOperationsTotal,
		m.CodecBytesTotal,
		m.CodecCacheHitsTotal,
		m.CodecCacheMisses,
		m.CodecCacheBreaker,
		m.IngestMessagesTotal,
	)

	return m
}

// ObserveCodec records one codec call and its byte counts.
func (m *Metrics) ObserveCodec(op string, in, out int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CodecOperationsTotal.WithLabelValues(op, status).Inc()
	if err == nil {
		m.CodecBytesTotal.WithLabelValues(op, "in").Add(float64(in))
		m.CodecBytesTotal.WithLabelValues(op, "out").Add(float64(out))
	}
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
