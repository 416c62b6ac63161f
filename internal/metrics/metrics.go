// Package metrics defines the Prometheus collectors for the review
// pipeline. Collectors are package-level and registered via promauto, so
// importing packages can increment them directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics
var (
	ReviewsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewpipe_reviews_processed_total",
		Help: "Total number of reviews that reached a completed state",
	}, []string{"sentiment"})

	ReviewFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewpipe_review_failures_total",
		Help: "Total number of reviews recorded as permanent failures",
	}, []string{"stage"})

	StageRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewpipe_stage_retries_total",
		Help: "Total number of stage attempts that failed and were retried",
	}, []string{"stage"})

	BatchesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewpipe_batches_completed_total",
		Help: "Total number of batches fully drained",
	})

	ReviewDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reviewpipe_review_duration_seconds",
		Help:    "Full three-stage pipeline duration per review in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)

// Moderation metrics
var (
	ProfaneReviewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewpipe_profane_reviews_total",
		Help: "Total number of reviews flagged for profanity",
	})

	BannedUsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reviewpipe_banned_users_total",
		Help: "Number of users currently banned in the ledger",
	})
)
