// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// ListingQueryResults observes how many listings matched a query before
	// pagination, per caller (worker or http).
	ListingQueryResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_query_results",
			Help:    "Number of listings matching a query before pagination",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"source"},
	)

	// SnapshotCacheRequests counts listing snapshot lookups by outcome
	// (hit, miss, error).
	SnapshotCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_snapshot_cache_requests_total",
			Help: "Listing snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Admin notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)
