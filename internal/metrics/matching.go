package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Matching request metrics.
var (
	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Name:      "match_requests_total",
			Help:      "ComputeMatches calls by outcome",
		},
		[]string{"status"},
	)

	MatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchmaker",
			Name:      "match_duration_seconds",
			Help:      "ComputeMatches wall time",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	MatchCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "matchmaker",
			Name:      "match_candidates",
			Help:      "Candidates per ranking by partition",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"partition"}, // "compatible" / "other"
	)

	TasteFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Name:      "taste_fallbacks_total",
			Help:      "Candidates scored without the taste term",
		},
		[]string{"reason"}, // "error" / "timeout" / "breaker_open" / "dimension"
	)
)

var registerMatching sync.Once

// RegisterMatchingMetrics registers matching metrics. Safe to call repeatedly.
func RegisterMatchingMetrics() {
	registerMatching.Do(func() {
		prometheus.MustRegister(MatchRequestsTotal, MatchDuration, MatchCandidates, TasteFallbacksTotal)
	})
}
