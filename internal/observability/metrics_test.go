package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/config"
)

func TestMetricsRecordTransition(t *testing.T) {
	m := NewMetrics()
	m.RecordTransition("submit", "ok")
	m.RecordTransition("submit", "ok")
	m.RecordTransition("evaluate", "UNAUTHORIZED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitionTotal.WithLabelValues("submit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionTotal.WithLabelValues("evaluate", "UNAUTHORIZED")))
}

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/assignments", "GET", 200, 15*time.Millisecond)
	m.RecordError("/assignments", "GET", "NOT_FOUND")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/assignments", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorTotal.WithLabelValues("GET", "/assignments", "NOT_FOUND")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordTransition("start", "ok")
		m.ObserveProfileLoad("ok", time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
	assert.False(t, logger.Core().Enabled(-1))
}
