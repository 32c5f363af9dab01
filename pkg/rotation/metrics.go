package rotation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/systmms/ssmrotate/pkg/paramstore"
)

// Rotation outcome labels
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	rotationsTotal    *prometheus.CounterVec
	rotationDuration  *prometheus.HistogramVec
	rotationErrors    *prometheus.CounterVec
	lastRotationStamp *prometheus.GaugeVec

	metricsOnce       sync.Once
	metricsRegistered atomic.Bool
)

// Metrics records rotation outcomes. A nil *Metrics records nothing.
type Metrics struct{}

// NewMetrics registers the collectors with the default registry and
// returns a recorder.
func NewMetrics() *Metrics {
	InitMetrics()
	return &Metrics{}
}

// InitMetrics registers all collectors. Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		rotationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssmrotate_rotations_total",
				Help: "Total number of rotation attempts by outcome",
			},
			[]string{"target", "status"},
		)

		rotationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ssmrotate_rotation_duration_seconds",
				Help:    "Duration of rotation attempts in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"target"},
		)

		rotationErrors = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssmrotate_rotation_errors_total",
				Help: "Total number of failed rotations by error kind",
			},
			[]string{"target", "kind"},
		)

		lastRotationStamp = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ssmrotate_last_rotation_timestamp_seconds",
				Help: "Unix time of the last successful rotation",
			},
			[]string{"target"},
		)

		metricsRegistered.Store(true)
	})
}

// IsRegistered reports whether InitMetrics has run
func IsRegistered() bool {
	return metricsRegistered.Load()
}

// RecordRotation records one rotation attempt.
func (m *Metrics) RecordRotation(target string, duration time.Duration, err error) {
	if m == nil || !IsRegistered() {
		return
	}

	rotationDuration.WithLabelValues(target).Observe(duration.Seconds())
	if err != nil {
		rotationsTotal.WithLabelValues(target, StatusFailed).Inc()
		rotationErrors.WithLabelValues(target, paramstore.KindOf(err)).Inc()
		return
	}
	rotationsTotal.WithLabelValues(target, StatusCompleted).Inc()
	lastRotationStamp.WithLabelValues(target).SetToCurrentTime()
}
