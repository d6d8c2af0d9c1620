package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	evaluationsTotal  *prometheus.CounterVec
	evaluationSeconds prometheus.Histogram
	decodeFailures    prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors of the pipeline on
// the default registry
func RegisterMetrics() {
	registerOnce.Do(func() {
		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posture_evaluations_total",
			Help: "Total number of posture evaluations by mode and outcome.",
		}, []string{"mode", "verdict"})

		evaluationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "posture_evaluation_seconds",
			Help:    "Time taken to evaluate one frame, including keypoint extraction.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		decodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posture_decode_failures_total",
			Help: "Total number of frames that could not be decoded.",
		})

		prometheus.MustRegister(evaluationsTotal, evaluationSeconds, decodeFailures)
	})
}

// Evaluations exposes the evaluation counter
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// EvaluationLatency exposes the evaluation latency histogram
func EvaluationLatency() prometheus.Histogram {
	RegisterMetrics()
	return evaluationSeconds
}

// DecodeFailures exposes the decode failure counter
func DecodeFailures() prometheus.Counter {
	RegisterMetrics()
	return decodeFailures
}
