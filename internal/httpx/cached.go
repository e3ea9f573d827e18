package httpx

import (
	"context"
	"log/slog"
	"time"

	"cinewatch/internal/logging"
)

// PageStore persists fetched pages keyed by URL.
type PageStore interface {
	Get(ctx context.Context, url string, maxAge time.Duration) ([]byte, time.Time, bool, error)
	Put(ctx context.Context, url string, body []byte, fetchedAt time.Time) error
}

// CachedFetcher serves pages younger than TTL from Store and records fresh
// fetches there. Store failures are logged and never fail the fetch.
type CachedFetcher struct {
	Next   Fetcher
	Store  PageStore
	TTL    time.Duration
	Logger *slog.Logger
}

// NewCachedFetcher wraps next with store.
func NewCachedFetcher(next Fetcher, store PageStore, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		Next:   next,
		Store:  store,
		TTL:    ttl,
		Logger: logging.NewComponentLogger(logger, "pagecache"),
	}
}

func (f *CachedFetcher) Get(ctx context.Context, req Request) (Page, error) {
	logger := logging.WithContext(ctx, f.Logger)
	if f.Store != nil && f.TTL > 0 {
		body, fetchedAt, ok, err := f.Store.Get(ctx, req.URL, f.TTL)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "page cache read failed; fetching live", "cache_read_failed",
				logging.String("url", req.URL),
				logging.Error(err),
				logging.String(logging.FieldImpact, "page fetched from the network"),
			)
		case ok:
			logger.Debug("page cache hit", logging.String("url", req.URL))
			return Page{URL: req.URL, Body: body, FetchedAt: fetchedAt, FromCache: true}, nil
		}
	}

	page, err := f.Next.Get(ctx, req)
	if err != nil {
		return Page{}, err
	}
	if f.Store != nil && f.TTL > 0 {
		if err := f.Store.Put(ctx, req.URL, page.Body, page.FetchedAt); err != nil {
			logging.WarnWithContext(logger, "page cache write failed", "cache_write_failed",
				logging.String("url", req.URL),
				logging.Error(err),
				logging.String(logging.FieldImpact, "next run fetches this page again"),
			)
		}
	}
	return page, nil
}
