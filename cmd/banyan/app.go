package main

import (
	"context"
	"fmt"

	"banyan/internal/brain"
	"banyan/internal/cache"
	"banyan/internal/config"
	"banyan/internal/core/ports"
	"banyan/internal/feed"
	"banyan/internal/logging"
	"banyan/internal/metrics"
	"banyan/internal/rephrase"
	"banyan/internal/session"
	"banyan/internal/sites/banyan"
	"banyan/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app is everything one CLI invocation needs, built once from config.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	kv       ports.KeyValue
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	session  *session.Session
	feed     *feed.Store
}

func newApp(ctx context.Context, cfg *config.Config, verbose bool) (*app, error) {
	log, err := logging.New(verbose || cfg.Log.Verbose)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	a.metrics = metrics.New(a.registry)

	kv, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		// The cache and session degrade to seed data and memory.
		log.Warn("storage_unavailable", zap.String("type", cfg.Storage.Type), zap.Error(err))
		kv = nil
	}
	a.kv = kv
	a.session = session.Open(kv, log)

	gateway := banyan.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)

	var remote ports.Rephraser
	switch cfg.Rephrase.Backend {
	case "api":
		remote = gateway
	case "gemini":
		b, err := brain.NewGeminiBrain(ctx, cfg.Rephrase.GeminiAPIKey)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("gemini rephraser: %w", err)
		}
		remote = b
	case "local":
	}

	a.feed = feed.NewStore(
		gateway,
		cache.New(kv, a.metrics, log),
		rephrase.NewProvider(remote, a.metrics, log),
		feed.WithUsernameFunc(a.username),
		feed.WithMetrics(a.metrics),
		feed.WithLogger(log),
	)
	return a, nil
}

// authorID is the id of the stub user, or empty when logged out.
func (a *app) authorID() string {
	if u, ok := a.session.User(); ok {
		return u.ID
	}
	return ""
}

// username is the stub user's display name, or empty when logged out.
func (a *app) username() string {
	if u, ok := a.session.User(); ok {
		return u.Name
	}
	return ""
}

func (a *app) close() {
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.log.Warn("storage_close_failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
