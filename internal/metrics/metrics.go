package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LifecycleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackathon_lifecycle_transitions_total",
			Help: "Total number of lifecycle state transitions",
		},
		[]string{"entity", "to"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackathon_submissions_total",
			Help: "Total number of submissions accepted",
		},
		[]string{"hackathon"},
	)

	ScoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackathon_scores_total",
			Help: "Total number of judge scores recorded",
		},
		[]string{"hackathon"},
	)

	JudgeScoreHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackathon_judge_score",
			Help:    "Distribution of judge scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"hackathon"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
