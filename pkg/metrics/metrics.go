package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry           *prometheus.Registry
	registryOnce       sync.Once
	defaultMetricsPath = "/metrics"
	metricsEnabled     = true

	// Webhook metrics
	WebhookRequestsTotal     *prometheus.CounterVec
	WebhookSignatureFailures *prometheus.CounterVec
	WebhookPayloadBytes      prometheus.Histogram
	WebhookProcessingTime    prometheus.Histogram

	// Analysis metrics
	SessionsAnalyzed      *prometheus.CounterVec
	SegmentsAnalyzed      prometheus.Counter
	SessionCompositeScore prometheus.Histogram
	SessionWordsTotal     prometheus.Counter

	// Result store metrics
	ResultsStored   prometheus.Gauge
	ResultEvictions prometheus.Counter

	// WebSocket metrics
	WSClientsConnected prometheus.Gauge

	// AMQP metrics
	AMQPPublishedMessages *prometheus.CounterVec
	AMQPConnectionErrors  *prometheus.CounterVec
	AMQPConnectionStatus  prometheus.Gauge
)

// Init initializes all metrics and registers them with Prometheus
func Init(logger *logrus.Logger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		// Initialize webhook metrics
		WebhookRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speechwell_webhook_requests_total",
				Help: "Total number of webhook requests received",
			},
			[]string{"type", "status"},
		)

		WebhookSignatureFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speechwell_webhook_signature_failures_total",
				Help: "Total number of webhook signature verification failures",
			},
			[]string{"reason"},
		)

		WebhookPayloadBytes = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "speechwell_webhook_payload_bytes",
				Help:    "Size of received webhook payloads",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B to ~4MB
			},
		)

		WebhookProcessingTime = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "speechwell_webhook_processing_time_seconds",
				Help:    "Time taken to analyze a transcript payload",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
			},
		)

		// Initialize analysis metrics
		SessionsAnalyzed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speechwell_sessions_analyzed_total",
				Help: "Total number of conversation sessions analyzed",
			},
			[]string{"outcome"},
		)

		SegmentsAnalyzed = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "speechwell_segments_analyzed_total",
				Help: "Total number of user speech segments analyzed",
			},
		)

		SessionCompositeScore = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "speechwell_session_composite_score",
				Help:    "Distribution of session composite scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 to 100
			},
		)

		SessionWordsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "speechwell_session_words_total",
				Help: "Total number of user words analyzed across all sessions",
			},
		)

		// Initialize result store metrics
		ResultsStored = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "speechwell_results_stored",
				Help: "Number of analysis results currently held in the store",
			},
		)

		ResultEvictions = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "speechwell_result_evictions_total",
				Help: "Total number of results evicted from the bounded store",
			},
		)

		// Initialize WebSocket metrics
		WSClientsConnected = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "speechwell_ws_clients_connected",
				Help: "Number of WebSocket clients currently connected",
			},
		)

		// Initialize AMQP metrics
		AMQPPublishedMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speechwell_amqp_published_messages_total",
				Help: "Total number of messages published to AMQP",
			},
			[]string{"queue", "status"},
		)

		AMQPConnectionErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speechwell_amqp_connection_errors_total",
				Help: "Total number of AMQP connection errors",
			},
			[]string{"error_type"},
		)

		AMQPConnectionStatus = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "speechwell_amqp_connection_status",
				Help: "Status of AMQP connection (1 = connected, 0 = disconnected)",
			},
		)

		// Register all metrics
		registry.MustRegister(
			// Webhook metrics
			WebhookRequestsTotal,
			WebhookSignatureFailures,
			WebhookPayloadBytes,
			WebhookProcessingTime,

			// Analysis metrics
			SessionsAnalyzed,
			SegmentsAnalyzed,
			SessionCompositeScore,
			SessionWordsTotal,

			// Result store metrics
			ResultsStored,
			ResultEvictions,

			// WebSocket metrics
			WSClientsConnected,

			// AMQP metrics
			AMQPPublishedMessages,
			AMQPConnectionErrors,
			AMQPConnectionStatus,
		)

		logger.Info("Prometheus metrics initialized")
	})
}

// GetRegistry returns the prometheus registry
func GetRegistry() *prometheus.Registry {
	return registry
}

// SetMetricsPath sets the HTTP path for metrics endpoint
func SetMetricsPath(path string) {
	defaultMetricsPath = path
}

// EnableMetrics enables or disables metrics collection
func EnableMetrics(enabled bool) {
	metricsEnabled = enabled
}

// IsMetricsEnabled returns whether metrics are enabled
func IsMetricsEnabled() bool {
	return metricsEnabled
}

// RegisterHandler registers the metrics HTTP handler
func RegisterHandler(mux *http.ServeMux) {
	if metricsEnabled {
		handler := promhttp.HandlerFor(
			registry,
			promhttp.HandlerOpts{
				EnableOpenMetrics: true,
				Registry:          registry,
			},
		)
		mux.Handle(defaultMetricsPath, handler)
	}
}
