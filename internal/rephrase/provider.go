package rephrase

import (
	"context"
	"fmt"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"
	"banyan/internal/logging"
	"banyan/internal/metrics"

	"go.uber.org/zap"
)

// Provider always produces a phrasing: it asks Remote first and falls back to
// Soften on any failure, including an empty answer. A nil Remote means offline-only.
type Provider struct {
	Remote  ports.Rephraser
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewProvider(remote ports.Rephraser, m *metrics.Metrics, log *zap.Logger) *Provider {
	return &Provider{Remote: remote, Metrics: m, Log: logging.OrNop(log)}
}

func (p *Provider) Rephrase(ctx context.Context, text string) string {
	if p.Remote == nil {
		return Soften(text)
	}
	out, err := p.Remote.Rephrase(ctx, text)
	if err == nil && out == "" && text != "" {
		err = fmt.Errorf("%w: empty rephrasing", domain.ErrRemoteUnavailable)
	}
	if err == nil {
		p.Metrics.Remote("rephrase", nil)
		return out
	}
	p.Metrics.Remote("rephrase", err)
	p.Metrics.Fallback("rephrase")
	logging.OrNop(p.Log).Warn("rephrase_fallback_local", zap.Error(err))
	return Soften(text)
}
