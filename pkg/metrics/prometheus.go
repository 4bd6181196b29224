package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	processed *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	errors    *prometheus.CounterVec
	lastClose *prometheus.GaugeVec
	latency   *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		processed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etfsheet_instruments_processed_total",
				Help: "Total number of instruments processed into records",
			},
			[]string{"ticker"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etfsheet_fallback_records_total",
				Help: "Total number of all-zero fallback records emitted",
			},
			[]string{"ticker"},
		),
		errors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etfsheet_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "etfsheet_last_close",
				Help: "Last computed closing price for an instrument",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "etfsheet_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProcessed counts a completed instrument record.
func (r *Recorder) RecordProcessed(ticker string) {
	r.processed.WithLabelValues(ticker).Inc()
}

// RecordFallback counts an all-zero fallback record.
func (r *Recorder) RecordFallback(ticker string) {
	r.fallbacks.WithLabelValues(ticker).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLastClose records the latest close used for a ticker.
func (r *Recorder) RecordLastClose(ticker string, close float64) {
	r.lastClose.WithLabelValues(ticker).Set(close)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
