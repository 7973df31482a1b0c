package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     string
	}{
		{"empty is healthy", nil, StateHealthy},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StateHealthy},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StateDegraded},
		{"one unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", "")}, StateUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("system", tt.statuses)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.want == StateHealthy, got.Healthy)
		})
	}
}

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "connection refused", "connection refused"},
		{"nats url", "dial nats://10.0.0.5:4222 failed", "dial [URL] failed"},
		{"ip and port", "dial 192.168.1.100:3306 refused", "dial [IP][PORT] refused"},
		{"unix path", "open /etc/vitalstream/config.json denied", "open [PATH] denied"},
		{"credential", "auth failed: password=hunter2", "auth failed: [REDACTED]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeMessage(tt.in))
		})
	}
}

func TestMonitorUpdateAndGet(t *testing.T) {
	m := NewMonitor("vitalstream")

	m.UpdateHealthy("engine", "running")
	m.UpdateDegraded("distcache", "bucket unavailable")

	status, ok := m.Get("engine")
	require.True(t, ok)
	assert.True(t, status.IsHealthy())

	_, ok = m.Get("missing")
	assert.False(t, ok)

	agg := m.Aggregate()
	assert.Equal(t, StateDegraded, agg.Status)
	assert.Len(t, agg.SubStatuses, 2)
}

func TestMonitorServeHTTP(t *testing.T) {
	m := NewMonitor("vitalstream")
	m.UpdateHealthy("engine", "running")

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)

	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "vitalstream", status.Component)
	assert.True(t, status.Healthy)

	// Degraded still answers 200; only unhealthy ejects the instance.
	m.UpdateDegraded("distcache", "tier down")
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)

	m.UpdateUnhealthy("store", "query failures")
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 503, rec.Code)
}
