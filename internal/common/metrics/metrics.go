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
)

// Link checker metrics.
var (
	LinkProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_probes_total",
			Help: "Link probes by retailer and outcome reason",
		},
		[]string{"retailer", "reason"},
	)

	LinkProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "link_probe_duration_seconds",
			Help:    "Duration of a single link probe in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 4, 5},
		},
		[]string{"retailer"},
	)

	LinkValidationBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "link_validation_batch_size",
			Help:    "Number of candidate links per validation batch",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	LinkValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "link_validation_duration_seconds",
			Help:    "Wall-clock duration of a validation batch in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 4, 5, 8, 10},
		},
	)
)

// ObserveJob records the outcome of one worker job.
func ObserveJob(taskType, errorCode string, seconds float64) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(seconds)
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
