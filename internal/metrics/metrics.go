package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesStored tracks messages persisted per chat
	MessagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpulse_messages_stored_total",
			Help: "Total number of messages stored",
		},
		[]string{"chat"},
	)

	// BatchItemsTotal tracks per-item outcomes of bulk KV runs
	BatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpulse_batch_items_total",
			Help: "Total number of items processed by bulk runs",
		},
		[]string{"result"},
	)

	// BatchFailuresTotal tracks bulk-run failures by error kind
	BatchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpulse_batch_failures_total",
			Help: "Total number of bulk-run item failures",
		},
		[]string{"kind"},
	)

	// BatchAbortsTotal counts bulk runs cut short by critical failure
	BatchAbortsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatpulse_batch_aborts_total",
			Help: "Total number of bulk runs aborted on critical failure",
		},
	)

	// AICallsTotal tracks AI provider calls
	AICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpulse_ai_calls_total",
			Help: "Total number of AI provider calls",
		},
		[]string{"op", "status"},
	)

	// AILatency tracks AI provider call latency
	AILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatpulse_ai_latency_seconds",
			Help:    "AI provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// BreakerShortCircuitsTotal counts calls rejected by the open breaker
	BreakerShortCircuitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatpulse_breaker_short_circuits_total",
			Help: "Total number of calls rejected while the breaker was open",
		},
	)

	// BreakerOpen reports whether the analysis breaker is currently open
	BreakerOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatpulse_breaker_open",
			Help: "1 when the analysis breaker is open, 0 otherwise",
		},
	)
)
