package jwtauth

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumuluz/go-jwt-auth/core"
)

func TestNoopMetrics(t *testing.T) {
	var metrics Metrics = NoopMetrics{}

	metrics.IncCounter("test_counter", map[string]string{"tag": "value"})
	metrics.ObserveHistogram("test_histogram", 1.5, map[string]string{"tag": "value"})
}

func TestPrometheusMetrics(t *testing.T) {
	t.Run("IncCounter", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewPrometheusMetrics(registry)

		tags := map[string]string{"outcome": "success"}
		metrics.IncCounter(core.MetricVerifications, tags)
		metrics.IncCounter(core.MetricVerifications, tags)
		metrics.IncCounter(core.MetricVerifications, map[string]string{"outcome": "token_expired"})

		vec := metrics.counters[core.MetricVerifications]
		require.NotNil(t, vec)
		assert.Equal(t, float64(2), testutil.ToFloat64(vec.WithLabelValues("success")))
		assert.Equal(t, float64(1), testutil.ToFloat64(vec.WithLabelValues("token_expired")))

		count, err := testutil.GatherAndCount(registry, core.MetricVerifications)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("ObserveHistogram", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewPrometheusMetrics(registry)

		metrics.ObserveHistogram(core.MetricVerificationDuration, 0.25, nil)
		metrics.ObserveHistogram(core.MetricVerificationDuration, 0.75, nil)

		families, err := registry.Gather()
		require.NoError(t, err)
		require.Len(t, families, 1)

		family := families[0]
		assert.Equal(t, core.MetricVerificationDuration, family.GetName())
		assert.Equal(t, dto.MetricType_HISTOGRAM, family.GetType())
		assert.Equal(t, uint64(2), family.GetMetric()[0].GetHistogram().GetSampleCount())
		assert.InDelta(t, 1.0, family.GetMetric()[0].GetHistogram().GetSampleSum(), 1e-9)
	})

	t.Run("mismatched labels are dropped", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewPrometheusMetrics(registry)

		metrics.IncCounter("test_counter", map[string]string{"a": "1"})
		metrics.IncCounter("test_counter", map[string]string{"b": "2"})

		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.counters["test_counter"].WithLabelValues("1")))
	})

	t.Run("two instances share one registry", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		first := NewPrometheusMetrics(registry)
		second := NewPrometheusMetrics(registry)

		tags := map[string]string{"decision": "allow"}
		first.IncCounter(core.MetricAuthorizationDecisions, tags)
		second.IncCounter(core.MetricAuthorizationDecisions, tags)

		assert.Equal(t, float64(2), testutil.ToFloat64(first.counters[core.MetricAuthorizationDecisions].WithLabelValues("allow")))
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"key1", "key2", "key3"}, keys(map[string]string{
		"key3": "value3",
		"key1": "value1",
		"key2": "value2",
	}))
	assert.Empty(t, keys(nil))
}
