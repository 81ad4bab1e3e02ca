// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nil-matching/internal/models"
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

	MatchScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of total match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"tier", "method"},
	)

	MatchesExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_excluded_total",
			Help: "Pairs excluded by a hard rule",
		},
		[]string{"task_type"},
	)

	QualitativeAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qualitative_assessments_total",
			Help: "Qualitative assessments by outcome",
		},
		[]string{"outcome"},
	)

	QualitativeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qualitative_assessment_duration_seconds",
			Help:    "Latency of qualitative assessments",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_lookups_total",
			Help: "Profile cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// JobCompleted records a successful job and its duration.
func JobCompleted(taskType string, started time.Time) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
}

// JobFailed records a failed job and its duration.
func JobFailed(taskType, errorCode string, started time.Time) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
}

// ObserveMatch records one scored pair.
func ObserveMatch(taskType string, r models.MatchResult) {
	if r.IsExcluded {
		MatchesExcluded.WithLabelValues(taskType).Inc()
		return
	}
	MatchScores.WithLabelValues(string(r.Tier), string(r.ScoringMethod)).Observe(r.TotalScore)
}

// Recorder adapts the package collectors to the narrow observer interfaces
// used by the qualitative and acquisition packages.
type Recorder struct{}

func (Recorder) ObserveAssessment(outcome string, d time.Duration) {
	QualitativeAssessments.WithLabelValues(outcome).Inc()
	QualitativeDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (Recorder) ObserveCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ProfileCacheLookups.WithLabelValues(kind, result).Inc()
}
