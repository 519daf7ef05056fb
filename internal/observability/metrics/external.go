package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ArxivRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arxiv_requests_total",
			Help: "Total number of arXiv API requests",
		},
		[]string{"outcome"},
	)

	ArxivRequestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arxiv_request_duration_seconds",
			Help:    "arXiv API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NewsFeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_feed_fetches_total",
			Help: "Total number of external news feed fetches",
		},
		[]string{"source", "outcome"},
	)
)
