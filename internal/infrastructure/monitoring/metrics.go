package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	ApplicationsSubmitted prometheus.Counter
	Evaluations           *prometheus.CounterVec
	EligibilityScore      prometheus.Histogram
	Reviews               *prometheus.CounterVec
	EventsPublished       *prometheus.CounterVec
	BatchRuns             *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_origination_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		ApplicationsSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_origination_applications_submitted_total",
				Help: "Total number of loan applications accepted for evaluation.",
			},
		),
		Evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_origination_evaluations_total",
				Help: "Total number of automated eligibility evaluations by outcome.",
			},
			[]string{"status"},
		),
		EligibilityScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loan_origination_eligibility_score",
				Help:    "Distribution of computed eligibility scores.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		Reviews: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_origination_reviews_total",
				Help: "Total number of officer reviews by action.",
			},
			[]string{"action"},
		),
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_origination_events_published_total",
				Help: "Total number of domain events published by type and status.",
			},
			[]string{"event_type", "status"},
		),
		BatchRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_origination_batch_runs_total",
				Help: "Total number of batch job runs by job and status.",
			},
			[]string{"job", "status"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordSubmission() {
	Business.ApplicationsSubmitted.Inc()
}

func RecordEvaluation(status string, score float64) {
	Business.Evaluations.WithLabelValues(status).Inc()
	Business.EligibilityScore.Observe(score)
}

func RecordReview(action string) {
	Business.Reviews.WithLabelValues(action).Inc()
}

func RecordEventPublished(eventType, status string) {
	Business.EventsPublished.WithLabelValues(eventType, status).Inc()
}

func RecordBatchRun(job, status string) {
	Business.BatchRuns.WithLabelValues(job, status).Inc()
}
