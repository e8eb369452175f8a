package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "media"

// Outcome labels for cleanup counters
const (
	OutcomeDeleted = "deleted"
	OutcomeMissing = "missing"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics exposes Prometheus collectors for the media pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	uploads     *prometheus.CounterVec
	processing  *prometheus.HistogramVec
	transcode   *prometheus.HistogramVec
	cleanupKeys *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the metrics registered with the global Prometheus registry
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = MustNew(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// MustNew registers the collectors with reg and panics on conflicting registrations
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Processed uploads by media kind and status.",
		}, []string{"kind", "status"}),
		processing: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_seconds",
			Help:      "End-to-end processing latency per media kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		transcode: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcode_seconds",
			Help:      "External transcoder invocation latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"operation"}),
		cleanupKeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_keys_total",
			Help:      "Storage keys handled by cleanup by outcome.",
		}, []string{"outcome"}),
	}

	m.uploads = register(reg, m.uploads)
	m.processing = register(reg, m.processing)
	m.transcode = register(reg, m.transcode)
	m.cleanupKeys = register(reg, m.cleanupKeys)
	return m
}

// register reuses an identical collector that is already registered
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) T {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return collector
}

// ObserveUpload records one processed upload
func (m *Metrics) ObserveUpload(kind string, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, status).Inc()
	m.processing.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveTranscode records one transcoder invocation
func (m *Metrics) ObserveTranscode(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.transcode.WithLabelValues(operation).Observe(duration.Seconds())
}

// AddCleanupKeys counts cleanup results for an outcome
func (m *Metrics) AddCleanupKeys(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cleanupKeys.WithLabelValues(outcome).Add(float64(n))
}
