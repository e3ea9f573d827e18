package listings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cinewatch/internal/config"
	"cinewatch/internal/httpx"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/services"
	"cinewatch/internal/textutil"
)

// Provider retrieves the films currently showing from one source.
//
// Fetch performs I/O only and never caches or retries. Parse is pure: the same
// document always yields the same listings in the same order.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (html []byte, pageURL string, err error)
	Parse(html []byte, pageURL string) ([]matching.CinemaListing, error)
}

// New builds the provider selected by cfg.Listings.
func New(cfg *config.Config, fetcher httpx.Fetcher) (Provider, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "listings", "new provider", "config is nil", nil)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Listings.Provider)) {
	case config.ProviderComingSoon:
		if fetcher == nil {
			return nil, services.Wrap(services.ErrConfiguration, "listings", "new provider", "http fetcher is required", nil)
		}
		return &ComingSoon{
			BaseURL: cfg.Listings.BaseURL,
			City:    cfg.Listings.City,
			Methods: ParseMethods(cfg.Listings.Methods),
			Fetcher: fetcher,
		}, nil
	case config.ProviderFile:
		return &FileProvider{Path: cfg.Listings.File}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "listings", "new provider",
			fmt.Sprintf("unknown provider %q", cfg.Listings.Provider), nil)
	}
}

// Load fetches and parses listings from p. A failed fetch is returned as an
// error; an empty page is a successful, empty result.
func Load(ctx context.Context, p Provider, logger *slog.Logger) ([]matching.CinemaListing, error) {
	ctx = services.WithSource(ctx, p.Name())
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "listings"))

	html, pageURL, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	items, err := p.Parse(html, pageURL)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "listings", "parse", pageURL, err)
	}
	logger.Info("listings loaded",
		logging.String("url", pageURL),
		logging.Int("listing_count", len(items)),
	)
	if len(items) == 0 {
		logging.WarnWithContext(logger, "no listings found on page", "listings_empty",
			logging.String("url", pageURL),
			logging.String(logging.FieldErrorHint, "the page layout may have changed; try `cinewatch listings --log-level debug`"),
		)
	}
	return items, nil
}

// dedupe drops listings whose folded title was already seen, keeping the
// first occurrence.
func dedupe(items []matching.CinemaListing) []matching.CinemaListing {
	seen := make(map[string]struct{}, len(items))
	out := make([]matching.CinemaListing, 0, len(items))
	for _, item := range items {
		key := textutil.Fold(item.Title)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
