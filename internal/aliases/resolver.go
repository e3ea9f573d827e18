package aliases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/textutil"
)

const (
	defaultLanguage = "it"
	defaultTimeout  = 30 * time.Second
	// CacheTTL bounds how long a resolved alias list is reused.
	CacheTTL = 30 * 24 * time.Hour
)

// Cache stores resolved aliases per title and language.
type Cache interface {
	GetAliases(ctx context.Context, title, language string, maxAge time.Duration) ([]string, bool, error)
	PutAliases(ctx context.Context, title, language string, aliases []string) error
}

// Resolver looks up localized release titles for watchlist entries.
type Resolver struct {
	Generator Generator
	Cache     Cache
	Language  string
	Timeout   time.Duration
	Logger    *slog.Logger
}

type response struct {
	Titles []string `json:"titles"`
}

// Resolve returns the localized titles for title, consulting the cache first.
func (r *Resolver) Resolve(ctx context.Context, title string) ([]string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	lang := r.language()
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "aliases"))

	if r.Cache != nil {
		cached, ok, err := r.Cache.GetAliases(ctx, title, lang, CacheTTL)
		switch {
		case err != nil:
			logger.Debug("alias cache read failed", logging.Error(err))
		case ok:
			return cached, nil
		}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := r.Generator.Generate(callCtx, prompt(title, lang))
	if err != nil {
		return nil, err
	}
	var resp response
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return nil, fmt.Errorf("decode alias response: %w", err)
	}
	titles := cleanTitles(title, resp.Titles)

	if r.Cache != nil {
		if err := r.Cache.PutAliases(ctx, title, lang, titles); err != nil {
			logger.Debug("alias cache write failed", logging.Error(err))
		}
	}
	logger.Debug("aliases resolved",
		logging.String("watchlist_title", title),
		logging.String("language", lang),
		logging.Int("aliases", len(titles)),
	)
	return titles, nil
}

// Enrich appends resolved aliases to entries that have no alternative titles
// yet. Lookup failures are logged and leave the entry unchanged.
func (r *Resolver) Enrich(ctx context.Context, entries []matching.WatchlistEntry) []matching.WatchlistEntry {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "aliases"))
	out := make([]matching.WatchlistEntry, len(entries))
	copy(out, entries)

	added := 0
	for i, entry := range out {
		if ctx.Err() != nil {
			break
		}
		if len(entry.AlternativeTitles) > 0 {
			continue
		}
		titles, err := r.Resolve(ctx, entry.Title)
		if err != nil {
			logging.WarnWithContext(logger, "alias lookup failed", "alias_lookup_failed",
				logging.String("watchlist_title", entry.Title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "matching uses the watchlist titles only"),
			)
			continue
		}
		if len(titles) == 0 {
			continue
		}
		out[i].AlternativeTitles = titles
		added++
	}
	if added > 0 {
		logger.Info("aliases added", logging.Int("entries", added))
	}
	return out
}

func (r *Resolver) language() string {
	if lang := strings.TrimSpace(r.Language); lang != "" {
		return strings.ToLower(lang)
	}
	return defaultLanguage
}

func prompt(title, language string) string {
	return fmt.Sprintf("Film title: %q\nLanguage: %s\nList the cinema release titles for this language.", title, language)
}

// cleanTitles trims, drops blanks, the input title and case-folded duplicates.
func cleanTitles(title string, titles []string) []string {
	seen := map[string]struct{}{textutil.Fold(title): {}}
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		key := textutil.Fold(t)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
