package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActivityFeedDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_feed_duration_seconds",
			Help:    "Duration of activity feed aggregation",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActivityFeedRecordsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_feed_records_returned",
			Help:    "Number of records returned per activity feed request",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 50},
		},
	)

	NotificationCountQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_count_queries_total",
			Help: "Total number of unread-count queries",
		},
		[]string{"result"},
	)

	NotificationStreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_streams_active",
			Help: "Number of active notification websocket streams",
		},
	)

	RecommendPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_pool_size",
			Help:    "Size of the recommendation pool after merge and filter",
			Buckets: []float64{0, 10, 25, 50, 100, 200, 400},
		},
	)

	RecommendTermFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_term_failures_total",
			Help: "Total number of failed per-term searches in the recommendation fan-out",
		},
	)
)
