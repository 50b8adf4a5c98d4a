package metrics

import (
	"errors"

	"banyan/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts remote outcomes and local fallbacks. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	RemoteCalls *prometheus.CounterVec
	Fallbacks   *prometheus.CounterVec
	CacheErrors *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RemoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "banyan",
			Name:      "remote_calls_total",
			Help:      "Remote API calls by operation and outcome (ok, timeout, unavailable).",
		}, []string{"op", "outcome"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "banyan",
			Name:      "fallbacks_total",
			Help:      "Operations served locally after a remote failure.",
		}, []string{"op"}),
		CacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "banyan",
			Name:      "cache_errors_total",
			Help:      "Swallowed local cache failures by direction (read, write).",
		}, []string{"dir"}),
	}
	if reg != nil {
		reg.MustRegister(m.RemoteCalls, m.Fallbacks, m.CacheErrors)
	}
	return m
}

// Remote records the outcome of one remote call.
func (m *Metrics) Remote(op string, err error) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(op, Outcome(err)).Inc()
}

func (m *Metrics) Fallback(op string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(op).Inc()
}

func (m *Metrics) CacheError(dir string) {
	if m == nil {
		return
	}
	m.CacheErrors.WithLabelValues(dir).Inc()
}

// Outcome maps a remote error to its label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	default:
		return "unavailable"
	}
}
