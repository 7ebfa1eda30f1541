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

	// MappingRuns counts field mapping passes by outcome (valid, invalid).
	MappingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldmap_runs_total",
			Help: "Total number of defect-to-Jira mapping passes",
		},
		[]string{"outcome"},
	)

	MappingMismatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldmap_schema_mismatches_total",
			Help: "Defect properties that did not match their Jira field schema",
		},
		[]string{"field"},
	)

	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_reporter_fetch_failures_total",
			Help: "Failed requests to the defect reporter API",
		},
		[]string{"endpoint"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_reporter_cache_lookups_total",
			Help: "Field mapping cache lookups by result",
		},
		[]string{"result"},
	)

	ClientsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codegen_clients_generated_total",
			Help: "Generated client files by result",
		},
		[]string{"result"},
	)
)
