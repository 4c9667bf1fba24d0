// Package metrics описывает метрики Prometheus сервиса и функции их записи.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartify_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cartify_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ML
	FeatureExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cartify_feature_extraction_duration_seconds",
			Help:    "Duration of CNN forward passes in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"model"},
	)

	FeatureExtractionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartify_feature_extraction_errors_total",
			Help: "Total number of failed CNN forward passes",
		},
		[]string{"model"},
	)

	AnomalyDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartify_anomaly_decisions_total",
			Help: "Anomaly check outcomes by decision",
		},
		[]string{"decision"},
	)

	Recommendations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cartify_recommendations_total",
			Help: "Total number of served recommendation queries",
		},
	)

	// Chat
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartify_chat_requests_total",
			Help: "Chat messages by outcome",
		},
		[]string{"outcome"}, // "replied", "empty", "error"
	)

	// Auth
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartify_auth_attempts_total",
			Help: "Registration and login attempts by role and outcome",
		},
		[]string{"action", "role", "outcome"},
	)

	// Outbox
	OutboxPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cartify_outbox_events_published_total",
			Help: "Total number of outbox events published to Kafka",
		},
	)
)

// RecordAPIRequest фиксирует обработанный HTTP-запрос.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordFeatureExtraction фиксирует прогон модели.
func RecordFeatureExtraction(model string, duration time.Duration, err error) {
	FeatureExtractionDuration.WithLabelValues(model).Observe(duration.Seconds())
	if err != nil {
		FeatureExtractionErrors.WithLabelValues(model).Inc()
	}
}

func RecordAnomalyDecision(label string) {
	AnomalyDecisions.WithLabelValues(label).Inc()
}

func RecordChat(outcome string) {
	ChatRequests.WithLabelValues(outcome).Inc()
}

func RecordAuth(action, role string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthAttempts.WithLabelValues(action, role, outcome).Inc()
}
