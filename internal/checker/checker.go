package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinewatch/internal/listings"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/notifications"
	"cinewatch/internal/services"
	"cinewatch/internal/watchlist"
)

// Enricher adds alternative titles to watchlist entries.
type Enricher interface {
	Enrich(ctx context.Context, entries []matching.WatchlistEntry) []matching.WatchlistEntry
}

// Report summarizes one check pass.
type Report struct {
	RunID          string                 `json:"run_id"`
	StartedAt      time.Time              `json:"started_at"`
	Duration       time.Duration          `json:"duration"`
	WatchlistCount int                    `json:"watchlist_count"`
	ListingCount   int                    `json:"listing_count"`
	ListingsURL    string                 `json:"listings_url,omitempty"`
	Matches        []matching.MatchResult `json:"matches"`
	Notified       bool                   `json:"notified"`
}

// Options tunes a Checker.
type Options struct {
	// NotifyOnEmpty sends a notification even when nothing matched.
	NotifyOnEmpty bool
	// NotifyErrors reports failed runs through the notifier.
	NotifyErrors bool
}

// RunOptions adjusts a single Run.
type RunOptions struct {
	SkipNotify bool
}

// Checker runs the watchlist against the current listings.
type Checker struct {
	watchlist watchlist.Provider
	listings  listings.Provider
	aliases   Enricher
	selector  *matching.Selector
	notifier  notifications.Service
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// New assembles a Checker from its parts. aliases and notifier may be nil.
func New(wl watchlist.Provider, ls listings.Provider, selector *matching.Selector, aliases Enricher, notifier notifications.Service, opts Options, logger *slog.Logger) (*Checker, error) {
	if wl == nil || ls == nil || selector == nil {
		return nil, errors.New("checker requires watchlist, listings, and selector")
	}
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Checker{
		watchlist: wl,
		listings:  ls,
		aliases:   aliases,
		selector:  selector,
		notifier:  notifier,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "checker"),
		now:       time.Now,
	}, nil
}

// Run performs one check and notifies about the result.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	return c.RunWithOptions(ctx, RunOptions{})
}

// RunWithOptions performs one check. A failed fetch is returned as an error
// and is never reported as "no matches".
func (c *Checker) RunWithOptions(ctx context.Context, opts RunOptions) (Report, error) {
	report := Report{RunID: services.NewRunID(), StartedAt: c.now().UTC()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("check started")

	report, err := c.run(ctx, logger, report)
	report.Duration = c.now().Sub(report.StartedAt)
	if err != nil {
		logging.ErrorWithContext(logger, "check failed", "check_failed",
			logging.Error(err),
			logging.Duration("duration", report.Duration),
			logging.String(logging.FieldErrorHint, errorHint(err)),
		)
		if c.opts.NotifyErrors && !opts.SkipNotify && ctx.Err() == nil {
			if nerr := c.notifier.NotifyError(ctx, err, "check"); nerr != nil && !errors.Is(nerr, notifications.ErrSuppressed) {
				logger.Debug("error notification failed", logging.Error(nerr))
			}
		}
		return report, err
	}

	if !opts.SkipNotify && (len(report.Matches) > 0 || c.opts.NotifyOnEmpty) {
		summary := notifications.Summary{
			RunID:          report.RunID,
			CheckedAt:      report.StartedAt,
			WatchlistCount: report.WatchlistCount,
			ListingCount:   report.ListingCount,
			ListingsURL:    report.ListingsURL,
			Matches:        report.Matches,
		}
		switch err := c.notifier.NotifyMatches(ctx, summary); {
		case errors.Is(err, notifications.ErrSuppressed):
			logger.Debug("match notification suppressed as a repeat")
		case err != nil:
			logging.WarnWithContext(logger, "match notification failed", "notify_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "matches are only visible in the logs"),
			)
		case !notifications.IsNoop(c.notifier):
			report.Notified = true
		}
	}

	logger.Info("check completed",
		logging.Int("match_count", len(report.Matches)),
		logging.Int("watchlist_count", report.WatchlistCount),
		logging.Int("listing_count", report.ListingCount),
		logging.Bool("notified", report.Notified),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

func (c *Checker) run(ctx context.Context, logger *slog.Logger, report Report) (Report, error) {
	entries, err := watchlist.Load(ctx, c.watchlist, c.logger)
	if err != nil {
		return report, fmt.Errorf("load watchlist: %w", err)
	}
	report.WatchlistCount = len(entries)

	items, err := listings.Load(ctx, c.listings, c.logger)
	if err != nil {
		return report, fmt.Errorf("load listings: %w", err)
	}
	report.ListingCount = len(items)
	if p, ok := c.listings.(interface{ PageURL() string }); ok {
		report.ListingsURL = p.PageURL()
	}

	if c.aliases != nil && len(entries) > 0 && len(items) > 0 {
		entries = c.aliases.Enrich(ctx, entries)
	}

	matches, err := c.selector.MatchAll(ctx, entries, items)
	if err != nil {
		return report, fmt.Errorf("match titles: %w", err)
	}
	report.Matches = matches

	for _, m := range matches {
		attrs := []logging.Attr{
			logging.String("watchlist_title", m.Entry.Title),
			logging.String("listing_title", m.Listing.Title),
			logging.String("matched_title", m.MatchedTitle),
			logging.Float64("score", m.Score),
			logging.String("match_kind", string(m.Kind)),
		}
		if method := m.Listing.Metadata["method"]; method != "" {
			attrs = append(attrs, logging.String("method", method))
		}
		attrs = append(attrs, logging.DecisionAttrs("title_match", "accepted",
			fmt.Sprintf("score %.3f above threshold %.2f", m.Score, c.selector.Threshold))...)
		logger.Info("match found", logging.Args(attrs...)...)
	}
	return report, nil
}

func errorHint(err error) string {
	var blocked *services.BlockedError
	var fetchErr *services.FetchError
	switch {
	case errors.As(err, &blocked):
		return "the site served a challenge page; try again later or set http.proxy_url"
	case errors.As(err, &fetchErr) && fetchErr.StatusCode() == 404:
		return "page not found; check watchlist.username and listings.city"
	case errors.Is(err, services.ErrFetch):
		return "the source could not be reached; check connectivity and http settings"
	case errors.Is(err, services.ErrParse):
		return "the page could not be parsed; the site layout may have changed"
	case errors.Is(err, services.ErrConfiguration):
		return "run `cinewatch config validate`"
	default:
		return "check logs for details"
	}
}
