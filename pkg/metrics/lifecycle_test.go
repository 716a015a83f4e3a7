package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLifecycleMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)

	m.ObserveTransition("cancel_item", "applied")
	m.ObserveTransition("cancel_item", "applied")
	m.ObserveTransition("ship_item", "conflict")
	m.IncAggregatorFailure()
	m.IncMixedFallback()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("cancel_item", "applied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("ship_item", "conflict")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.aggregatorFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.mixedFallbacks))
}

func TestLifecycleMetrics_NilSafe(t *testing.T) {
	var m *LifecycleMetrics
	m.ObserveTransition("cancel_item", "applied")
	m.IncAggregatorFailure()
	m.IncMixedFallback()

	empty := NewLifecycleMetrics(nil)
	empty.ObserveTransition("cancel_item", "applied")
}
