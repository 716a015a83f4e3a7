package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records item transition outcomes and aggregator health.
type LifecycleMetrics struct {
	transitions        *prometheus.CounterVec
	aggregatorFailures prometheus.Counter
	mixedFallbacks     prometheus.Counter
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided
// registerer. A nil registerer yields a no-op recorder for tests.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_item_transitions_total",
		Help: "Item status transition attempts by action and outcome.",
	}, []string{"action", "outcome"})
	aggregatorFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_status_aggregator_failures_total",
		Help: "Order status recomputations that failed after a committed item mutation.",
	})
	mixedFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_status_mixed_fallbacks_total",
		Help: "Aggregations that fell through to the mixed catch-all label.",
	})
	reg.MustRegister(transitions, aggregatorFailures, mixedFallbacks)
	return &LifecycleMetrics{
		transitions:        transitions,
		aggregatorFailures: aggregatorFailures,
		mixedFallbacks:     mixedFallbacks,
	}
}

// ObserveTransition records one transition attempt.
func (m *LifecycleMetrics) ObserveTransition(action, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

// IncAggregatorFailure records a non-fatal aggregator failure.
func (m *LifecycleMetrics) IncAggregatorFailure() {
	if m == nil || m.aggregatorFailures == nil {
		return
	}
	m.aggregatorFailures.Inc()
}

// IncMixedFallback records a multiset that hit the mixed catch-all.
func (m *LifecycleMetrics) IncMixedFallback() {
	if m == nil || m.mixedFallbacks == nil {
		return
	}
	m.mixedFallbacks.Inc()
}
