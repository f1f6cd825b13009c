package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordAPICall("GET", "/patients", 200, 10*time.Millisecond)
	m.RecordAPICall("GET", "/patients", 200, 12*time.Millisecond)
	m.RecordAPICall("POST", "/auth/login", 0, time.Millisecond)
	m.RecordLifecycle("patients/fetchAll", "pending")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("GET", "/patients", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("POST", "/auth/login", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lifecycle.WithLabelValues("patients/fetchAll", "pending")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAPICall("GET", "/x", 500, time.Second)
		m.RecordLifecycle("a", "b")
		m.RecordRequest("/x", "GET", 200, time.Second)
		m.RecordError("/x", "GET", "UNKNOWN")
	})
}
