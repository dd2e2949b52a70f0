// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "audiora"

// Metrics holds all Prometheus metrics for the recorder and the gateway.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Session metrics
	SessionsStarted  prometheus.Counter
	SessionsFinished *prometheus.CounterVec
	SessionsActive   prometheus.Gauge
	RecordingSeconds prometheus.Histogram
	CapturedBytes    prometheus.Counter

	// Recognition metrics
	RecognitionLatency *prometheus.HistogramVec

	// Gateway metrics
	UploadsTotal  *prometheus.CounterVec
	UploadBytes   prometheus.Histogram
	EngineLatency prometheus.Histogram

	// Kafka publish metrics
	PublishTotal  *prometheus.CounterVec
	PublishErrors *prometheus.CounterVec
}

// DefaultMetrics is registered against the global Prometheus registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates and registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of recording sessions started",
		}),
		SessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Total number of recording sessions by final state",
		}, []string{"state"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of recording sessions in flight",
		}),
		RecordingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recording_seconds",
			Help:      "Elapsed seconds when a recording stopped",
			Buckets:   []float64{1, 2, 4, 6, 8, 10, 12},
		}),
		CapturedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captured_bytes_total",
			Help:      "Total raw audio bytes captured from the microphone",
		}),
		RecognitionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recognition_latency_seconds",
			Help:      "Recognition request latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"outcome"}),
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_uploads_total",
			Help:      "Total uploads handled by the gateway",
		}, []string{"outcome"}),
		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_upload_bytes",
			Help:      "Size of uploaded audio payloads",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 2, 10),
		}),
		EngineLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_engine_latency_seconds",
			Help:      "Latency of forwarded engine requests",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic"}),
		PublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic"}),
	}
}

// RecordSessionStart records a new session entering AwaitingPermission.
func (m *Metrics) RecordSessionStart() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a session leaving the active states.
func (m *Metrics) RecordSessionEnd(state string) {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
	m.SessionsFinished.WithLabelValues(state).Inc()
}

// RecordRecordingStopped records how long the microphone was held.
func (m *Metrics) RecordRecordingStopped(elapsedSeconds int) {
	if m == nil {
		return
	}
	m.RecordingSeconds.Observe(float64(elapsedSeconds))
}

// RecordCaptured records raw bytes appended to the capture buffer.
func (m *Metrics) RecordCaptured(bytes int) {
	if m == nil {
		return
	}
	m.CapturedBytes.Add(float64(bytes))
}

// RecordRecognition records one recognition round-trip.
func (m *Metrics) RecordRecognition(outcome string, latencySeconds float64) {
	if m == nil {
		return
	}
	m.RecognitionLatency.WithLabelValues(outcome).Observe(latencySeconds)
}

// RecordUpload records a gateway upload and its engine latency.
func (m *Metrics) RecordUpload(outcome string, bytes int, engineSeconds float64) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		m.UploadBytes.Observe(float64(bytes))
	}
	if engineSeconds > 0 {
		m.EngineLatency.Observe(engineSeconds)
	}
}

// RecordPublish records a Kafka publish attempt.
func (m *Metrics) RecordPublish(topic string, err error) {
	if m == nil {
		return
	}
	m.PublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.PublishErrors.WithLabelValues(topic).Inc()
	}
}
