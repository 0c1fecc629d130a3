package metrics

import "github.com/prometheus/client_golang/prometheus"

// Relevancy scoring Prometheus metrics.
var (
	RelevancyInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relevancy",
			Name:      "invocations_total",
			Help:      "Total number of scoring invocations",
		},
		[]string{"status"}, // "ok" / "aborted"
	)

	RelevancyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "relevancy",
			Name:      "invocation_duration_seconds",
			Help:      "Scoring invocation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RelevancyResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relevancy",
			Name:      "results_total",
			Help:      "Scored results by outcome",
		},
		[]string{"outcome"}, // "scored" / "excluded" / "unsaved"
	)

	RelevancyMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relevancy",
			Name:      "matches_total",
			Help:      "Recorded field matches by similarity kind",
		},
		[]string{"kind"},
	)

	RelevancyWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relevancy",
			Name:      "warnings_total",
			Help:      "Recoverable anomalies met while scoring",
		},
		[]string{"reason"},
	)
)

var relevancyMetricsRegistered bool

// RegisterRelevancyMetrics registers Prometheus scoring metrics. Must be called once from main.
func RegisterRelevancyMetrics() {
	if relevancyMetricsRegistered {
		return
	}
	prometheus.MustRegister(RelevancyInvocationsTotal)
	prometheus.MustRegister(RelevancyDuration)
	prometheus.MustRegister(RelevancyResultsTotal)
	prometheus.MustRegister(RelevancyMatchesTotal)
	prometheus.MustRegister(RelevancyWarningsTotal)
	relevancyMetricsRegistered = true
}
