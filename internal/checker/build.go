package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinewatch/internal/aliases"
	"cinewatch/internal/config"
	"cinewatch/internal/httpx"
	"cinewatch/internal/listings"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/notifications"
	"cinewatch/internal/pagecache"
	"cinewatch/internal/watchlist"
)

// Build wires a Checker from cfg. The returned close function releases the
// page cache and must be called once the checker is no longer used.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Checker, func() error, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	fetcher, store, err := NewFetcher(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return nil }
	if store != nil {
		closeFn = store.Close
	}

	wl, err := watchlist.New(cfg, fetcher, logger)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	ls, err := listings.New(cfg, fetcher)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	var enricher Enricher
	if cfg.Aliases.Enabled {
		gen, err := aliases.NewGemini(ctx, cfg.Aliases.APIKey, cfg.Aliases.Model)
		if err != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("alias generator: %w", err)
		}
		resolver := &aliases.Resolver{
			Generator: gen,
			Language:  cfg.Aliases.Language,
			Timeout:   time.Duration(cfg.Aliases.TimeoutSeconds) * time.Second,
			Logger:    logger,
		}
		if store != nil {
			resolver.Cache = store
		}
		enricher = resolver
	}

	chk, err := New(
		wl,
		ls,
		matching.NewSelector(cfg.Matching.Threshold, cfg.Matching.Workers),
		enricher,
		notifications.NewService(cfg, logger),
		Options{
			NotifyOnEmpty: cfg.Notifications.NotifyOnEmpty,
			NotifyErrors:  cfg.Notifications.Errors,
		},
		logger,
	)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return chk, closeFn, nil
}

// NewFetcher builds the scraping client described by cfg.HTTP. When the page
// cache is enabled and opens cleanly, the client is wrapped in a
// CachedFetcher and the store is returned so the caller can close it. A cache
// that fails to open is logged and skipped.
func NewFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (httpx.Fetcher, *pagecache.Store, error) {
	client, err := httpx.NewClient(httpx.Options{
		Timeout:           cfg.RequestTimeout(),
		UserAgent:         cfg.HTTP.UserAgent,
		AcceptLanguage:    cfg.HTTP.AcceptLanguage,
		ProxyURL:          cfg.HTTP.ProxyURL,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("http client: %w", err)
	}
	if !cfg.Cache.Enabled {
		return client, nil, nil
	}

	store, err := pagecache.Open(ctx, cfg.Cache.Path)
	if err != nil {
		logging.WarnWithContext(logging.NewComponentLogger(logger, "checker"), "page cache unavailable", "cache_unavailable",
			logging.Error(err),
			logging.String("path", cfg.Cache.Path),
			logging.String(logging.FieldImpact, "pages are fetched on every run"),
		)
		return client, nil, nil
	}
	return httpx.NewCachedFetcher(client, store, cfg.CacheTTL(), logger), store, nil
}
