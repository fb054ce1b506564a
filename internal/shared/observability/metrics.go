package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vreport_aggregation_seconds",
		Help:    "Time spent reducing raw sessions into result records.",
		Buckets: prometheus.DefBuckets,
	})

	RecomputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vreport_recompute_seconds",
		Help:    "Time spent rebuilding derived views after an input change.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	AggregatedRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vreport_aggregated_records_total",
		Help: "Total number of failing result records emitted by the aggregator.",
	})

	SkippedEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vreport_skipped_entries_total",
		Help: "Total number of raw entries skipped during aggregation, by reason.",
	}, []string{"reason"})

	DuplicateIDsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vreport_duplicate_ids_total",
		Help: "Total number of result records sharing an id with an earlier record.",
	})

	ResultSetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vreport_result_set_records",
		Help: "Number of records in the currently loaded result set.",
	})

	ReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vreport_reloads_total",
		Help: "Total number of result set reloads, by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vreport_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vreport_websocket_clients",
		Help: "Number of connected live navigation clients.",
	})

	RateLimitedRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vreport_rate_limited_requests_total",
		Help: "Total number of HTTP requests rejected by the rate limiter.",
	})

	HistoryRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vreport_history_runs_total",
		Help: "Total number of report runs persisted to history.",
	})
)
