package main

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/insights"
	"spendwise/internal/session"
)

// insightsCacheTTL bounds how long a summary is reused for an unchanged ledger.
const insightsCacheTTL = 30 * time.Minute

// app holds the collaborators every command needs.
type app struct {
	store    *session.Store
	insights *insights.Service
	cleanup  backend.CleanupFunc
}

func newApp(ctx context.Context) (*app, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{session.WithLogger(logger)}
	if res.Notifier != nil {
		opts = append(opts, session.WithNotifier(res.Notifier))
	}
	store := session.Open(ctx, res.KV, opts...)

	summarizer, err := insights.NewSummarizer(insights.Config{
		Provider: cfg.InsightsProvider,
		APIKey:   cfg.InsightsAPIKey,
		Model:    cfg.InsightsModel,
		BaseURL:  cfg.InsightsBaseURL,
		Timeout:  cfg.InsightsTimeout,
	})
	if err != nil {
		_ = res.Cleanup()
		return nil, fmt.Errorf("configure insights: %w", err)
	}
	svc := insights.NewService(summarizer,
		insights.WithCache(cache.NewLRUCache[insights.Response](cfg.InsightsCacheSize, insightsCacheTTL)),
		insights.WithLogger(logger),
		insights.WithTimeout(cfg.InsightsTimeout),
	)

	return &app{store: store, insights: svc, cleanup: res.Cleanup}, nil
}

func (a *app) Close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}
