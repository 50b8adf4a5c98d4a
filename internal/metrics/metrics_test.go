package metrics

import (
	"errors"
	"fmt"
	"testing"

	"banyan/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "timeout", Outcome(fmt.Errorf("wrapped: %w", domain.ErrTimeout)))
	assert.Equal(t, "unavailable", Outcome(domain.ErrRemoteUnavailable))
	assert.Equal(t, "unavailable", Outcome(errors.New("other")))
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Remote("list", nil)
	m.Remote("list", domain.ErrTimeout)
	m.Remote("list", domain.ErrTimeout)
	m.Fallback("list")
	m.CacheError("write")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("list", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("list", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheErrors.WithLabelValues("write")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Remote("list", nil)
		m.Fallback("list")
		m.CacheError("read")
	})
}
