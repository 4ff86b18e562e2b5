package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nose_advisor",
		Subsystem: "search",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock time of one Advisor.Run call, by outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	enumerationSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nose_advisor",
		Subsystem: "search",
		Name:      "enumeration_size",
		Help:      "Size of the candidate index set I* produced by one Run call.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	})

	solveStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nose_advisor",
		Subsystem: "search",
		Name:      "solve_total",
		Help:      "Count of ilp.Problem.Solve outcomes, by status.",
	}, []string{"status"})
)
