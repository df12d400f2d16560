// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamsActive tracks message streams currently being consumed.
	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_streams_active",
			Help: "Number of message streams currently being consumed",
		},
	)

	// StreamDuration tracks how long a full streamed turn takes.
	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_stream_duration_seconds",
			Help:    "Duration of a streamed chat turn",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"status"},
	)

	// StreamEventsTotal tracks decoded stream events by kind.
	StreamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_stream_events_total",
			Help: "Total decoded stream events",
		},
		[]string{"kind"},
	)

	// StreamDecodeErrors tracks malformed lines dropped under the skip
	// policy.
	StreamDecodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_stream_decode_errors_total",
			Help: "Malformed stream lines dropped",
		},
	)

	// MergeAppends tracks parts appended because no match was found.
	MergeAppends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_merge_appends_total",
			Help: "Parts appended as new by the merge engine",
		},
	)

	// RateLimitedTurns tracks turns rejected with HTTP 429.
	RateLimitedTurns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limited_turns_total",
			Help: "Chat turns rejected by the usage quota",
		},
	)

	// UsageRefreshes tracks quota view refreshes.
	UsageRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_usage_refreshes_total",
			Help: "Usage quota view refreshes",
		},
	)

	// APIRequestDuration tracks backend request duration.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "StudyHall API request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)
)

// RecordStream records metrics for one streamed turn.
func RecordStream(status string, duration float64) {
	StreamDuration.WithLabelValues(status).Observe(duration)
}

// RecordEvent records one decoded stream event.
func RecordEvent(kind string) {
	StreamEventsTotal.WithLabelValues(kind).Inc()
}
