package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/vitalstream/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()
	require.NotNil(t, registry)
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter_total",
		Help: "Test counter",
	})

	err := registry.RegisterCounter("test-service", "test_counter", counter)
	require.NoError(t, err)

	// Duplicate registration under the same key must fail as invalid
	err = registry.RegisterCounter("test-service", "test_counter", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterGaugeAndUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "Test gauge",
	})

	require.NoError(t, registry.RegisterGauge("test-service", "test_gauge", gauge))

	assert.True(t, registry.Unregister("test-service", "test_gauge"))
	assert.False(t, registry.Unregister("test-service", "test_gauge"))

	// Re-registration after unregister succeeds
	require.NoError(t, registry.RegisterGauge("test-service", "test_gauge", gauge))
}

func TestRegisterVecs(t *testing.T) {
	registry := NewMetricsRegistry()

	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_vec_total",
		Help: "Test counter vec",
	}, []string{"label"})
	require.NoError(t, registry.RegisterCounterVec("svc", "test_vec", counterVec))

	histVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "test_hist_seconds",
		Help: "Test histogram vec",
	}, []string{"label"})
	require.NoError(t, registry.RegisterHistogramVec("svc", "test_hist", histVec))
}
