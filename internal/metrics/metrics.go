package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VersionsForged counts standard versions created by the forge.
	VersionsForged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "standards_versions_forged_total",
		Help: "Total number of standard versions created.",
	})

	// EditsTotal counts edit use case executions by operation and outcome
	// (changed, unchanged, failed).
	EditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "standards_edits_total",
		Help: "Edit use case executions by operation and outcome.",
	}, []string{"operation", "outcome"})

	// BestEffortFailures counts side effects that failed without aborting the edit.
	BestEffortFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "standards_best_effort_failures_total",
		Help: "Best-effort side effects that failed, by operation.",
	}, []string{"operation"})

	// RulesMigrated counts old->new rule identity migrations requested by the forge.
	RulesMigrated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "standards_rules_migrated_total",
		Help: "Rule identity mappings fanned out to the detection port.",
	})

	// EnrichmentJobs counts summary jobs by terminal or intermediate status.
	EnrichmentJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "standards_enrichment_jobs_total",
		Help: "Summary enrichment jobs by status.",
	}, []string{"status"})

	// EnrichmentDuration tracks summary computation time.
	EnrichmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "standards_enrichment_duration_seconds",
		Help:    "Time spent computing a version summary.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)
