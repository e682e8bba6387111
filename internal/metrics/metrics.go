package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	planElevation = "plan_elevation"

	generationsTotal   = "generations_total"
	generationSeconds  = "generation_duration_seconds"
	resultFetchesTotal = "result_fetches_total"

	outcomeLabel = "outcome"
)

// Generation outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeTimedOut  = "timed_out"
	OutcomeRejected  = "rejected"
)

// Result fetch outcomes.
const (
	OutcomeUnavailable = "unavailable"
	OutcomeFetched     = "fetched"
	OutcomeFetchFailed = "fetch_failed"
)

var generationsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: planElevation,
		Name:      generationsTotal,
		Help:      "number of generation requests by terminal outcome",
	},
	[]string{outcomeLabel},
)

var generationSecondsMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Subsystem: planElevation,
		Name:      generationSeconds,
		Help:      "wall-clock duration of successful generations",
		Buckets:   []float64{5, 15, 30, 60, 120, 180, 300},
	},
)

var resultFetchesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: planElevation,
		Name:      resultFetchesTotal,
		Help:      "number of result downloads by outcome",
	},
	[]string{outcomeLabel},
)

// IncreaseGenerationsTotalMetric records a terminal generation outcome.
func IncreaseGenerationsTotalMetric(outcome string) {
	generationsTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

// ObserveGenerationDurationMetric records how long a successful generation took.
func ObserveGenerationDurationMetric(d time.Duration) {
	generationSecondsMetric.Observe(d.Seconds())
}

// IncreaseResultFetchesTotalMetric records a result download outcome.
func IncreaseResultFetchesTotalMetric(outcome string) {
	resultFetchesTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

func init() {
	prometheus.MustRegister(generationsTotalMetric)
	prometheus.MustRegister(generationSecondsMetric)
	prometheus.MustRegister(resultFetchesTotalMetric)
}
