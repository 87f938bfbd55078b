// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatsCreatedTotal tracks chats created.
	ChatsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chats_created_total",
			Help: "Total chats created",
		},
	)

	// ChatsEvictedTotal tracks chats evicted by the retention cap.
	ChatsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chats_evicted_total",
			Help: "Chats evicted by the retention cap",
		},
	)

	// MessagesTotal tracks messages appended, by role.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended",
		},
		[]string{"role"},
	)

	// ReplyDelay tracks simulated assistant reply latency.
	ReplyDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_reply_delay_seconds",
			Help:    "Simulated assistant reply delay",
			Buckets: []float64{.5, 1, 2, 3, 4, 5},
		},
	)

	// HistoryPagesTotal tracks simulated history pages served.
	HistoryPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_pages_total",
			Help: "Simulated older-message pages served",
		},
	)

	// PersistFailuresTotal tracks substrate write failures, by key.
	PersistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persist_failures_total",
			Help: "Substrate write failures",
		},
		[]string{"key"},
	)

	// LoginsTotal tracks verification outcomes.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "OTP verification attempts",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
