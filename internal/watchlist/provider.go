package watchlist

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

// Provider returns the films a user wants to watch.
type Provider interface {
	Name() string
	Entries(ctx context.Context) ([]matching.WatchlistEntry, error)
}

// New builds the provider selected by cfg.Watchlist.
func New(cfg *config.Config, fetcher httpx.Fetcher, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "watchlist", "new provider", "config is nil", nil)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Watchlist.Provider)) {
	case config.ProviderLetterboxd:
		if fetcher == nil {
			return nil, services.Wrap(services.ErrConfiguration, "watchlist", "new provider", "http fetcher is required", nil)
		}
		return &Letterboxd{
			BaseURL:                cfg.Watchlist.BaseURL,
			Username:               cfg.Watchlist.Username,
			MaxPages:               cfg.Watchlist.MaxPages,
			FetchAlternativeTitles: cfg.Watchlist.FetchAlternativeTitles,
			Fetcher:                fetcher,
			Logger:                 logger,
		}, nil
	case config.ProviderFile:
		return &FileProvider{Path: cfg.Watchlist.File}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "watchlist", "new provider",
			fmt.Sprintf("unknown provider %q", cfg.Watchlist.Provider), nil)
	}
}

// Load returns the entries from p, logging the count.
func Load(ctx context.Context, p Provider, logger *slog.Logger) ([]matching.WatchlistEntry, error) {
	ctx = services.WithSource(ctx, p.Name())
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "watchlist"))

	entries, err := p.Entries(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("watchlist loaded", logging.Int("watchlist_count", len(entries)))
	if len(entries) == 0 {
		logging.WarnWithContext(logger, "watchlist is empty", "watchlist_empty",
			logging.String(logging.FieldImpact, "nothing to match"),
			logging.String(logging.FieldErrorHint, "check the username and that the watchlist is public"),
		)
	}
	return entries, nil
}

func dedupe(entries []matching.WatchlistEntry) []matching.WatchlistEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]matching.WatchlistEntry, 0, len(entries))
	for _, e := range entries {
		if textutil.Fold(e.Title) == "" {
			continue
		}
		key := entryKey(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// entryKey identifies a film by its page URL, so remakes sharing a title stay
// distinct. Entries without a URL fall back to the folded title.
func entryKey(e matching.WatchlistEntry) string {
	if u := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(e.SourceURL)), "/"); u != "" {
		return "url:" + u
	}
	return "title:" + textutil.Fold(e.Title)
}

// mergeTitles appends extra titles not already present (case-folded) in
// base or equal to primary.
func mergeTitles(primary string, base []string, extra ...string) []string {
	seen := map[string]struct{}{textutil.Fold(primary): {}}
	var out []string
	for _, list := range [][]string{base, extra} {
		for _, title := range list {
			title = strings.TrimSpace(title)
			key := textutil.Fold(title)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, title)
		}
	}
	return out
}
