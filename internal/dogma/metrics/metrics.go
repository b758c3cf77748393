// Package metrics registers the prometheus instruments the evaluator and
// world loader publish, grounded in the teacher's promauto-based metrics
// (internal/access/policy/metrics in the source tree this was adapted
// from): counters and histograms built once at package init and updated
// from hot paths without an intermediate registration step.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal counts completed evaluations by their top-level
	// verdict (satisfied, unsatisfied, error).
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dogma",
		Subsystem: "eval",
		Name:      "evaluations_total",
		Help:      "Completed pattern evaluations by verdict.",
	}, []string{"verdict"})

	// EvaluationDuration observes wall-clock time spent in one top-level
	// Evaluate call.
	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dogma",
		Subsystem: "eval",
		Name:      "evaluation_duration_seconds",
		Help:      "Time spent evaluating one pattern against one input.",
		Buckets:   prometheus.DefBuckets,
	})

	// RecursionBoundHit counts evaluations aborted for exceeding the
	// configured stack-depth bound (spec §4.3).
	RecursionBoundHit = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dogma",
		Subsystem: "eval",
		Name:      "recursion_bound_hit_total",
		Help:      "Evaluations aborted for exceeding the recursion/stack bound.",
	})

	// WorldReloads counts World (re)builds, labeled by outcome.
	WorldReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dogma",
		Subsystem: "world",
		Name:      "reloads_total",
		Help:      "World (re)builds from the policy directory, by outcome.",
	}, []string{"outcome"})

	// WorldPatterns reports the pattern count of the currently active
	// World.
	WorldPatterns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dogma",
		Subsystem: "world",
		Name:      "patterns",
		Help:      "Number of patterns in the currently active World.",
	})
)
