package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector registers and records the service's Prometheus metrics.
type Collector struct {
	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Model API
	modelRequestsTotal   *prometheus.CounterVec
	modelRequestDuration *prometheus.HistogramVec
	modelTokensUsed      *prometheus.CounterVec

	// Speech pipeline
	transcriptionsTotal *prometheus.CounterVec
	synthesesTotal      *prometheus.CounterVec

	// Autonomous navigation
	navigationSessionsTotal *prometheus.CounterVec
	navigationRounds        prometheus.Histogram

	// Document store
	vectorStoreOpsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a collector and registers its metrics under the
// given namespace on the default registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.modelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Total number of model API requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.modelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Model API request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.modelTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	c.transcriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of audio transcriptions",
		},
		[]string{"status"},
	)

	c.synthesesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_syntheses_total",
			Help:      "Total number of speech synthesis attempts",
		},
		[]string{"provider", "status"},
	)

	c.navigationSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_sessions_total",
			Help:      "Total number of autonomous browsing sessions",
		},
		[]string{"terminal", "driver"},
	)

	c.navigationRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "navigation_rounds",
			Help:      "Interaction rounds per browsing session",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 12, 15},
		},
	)

	c.vectorStoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_store_operations_total",
			Help:      "Total number of document store operations",
		},
		[]string{"operation", "status"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordModelRequest records a model API call with its token usage.
func (c *Collector) RecordModelRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	c.modelRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.modelRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	c.modelTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.modelTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// RecordTranscription records a transcription attempt.
func (c *Collector) RecordTranscription(status string) {
	c.transcriptionsTotal.WithLabelValues(status).Inc()
}

// RecordSynthesis records a synthesis attempt for one provider.
func (c *Collector) RecordSynthesis(provider, status string) {
	c.synthesesTotal.WithLabelValues(provider, status).Inc()
}

// RecordNavigation records a finished browsing session.
func (c *Collector) RecordNavigation(terminal, driver string, rounds int) {
	c.navigationSessionsTotal.WithLabelValues(terminal, driver).Inc()
	c.navigationRounds.Observe(float64(rounds))
}

// RecordVectorStoreOp records a document store operation.
func (c *Collector) RecordVectorStoreOp(operation, status string) {
	c.vectorStoreOpsTotal.WithLabelValues(operation, status).Inc()
}

// statusCode maps an HTTP status code to its class label.
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
