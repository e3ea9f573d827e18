package checker_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"cinewatch/internal/checker"
	"cinewatch/internal/config"
	"cinewatch/internal/logging"
	"cinewatch/internal/services"
	"cinewatch/internal/testsupport"
)

type ntfyRecorder struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (r *ntfyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.titles = append(r.titles, req.Header.Get("Title"))
		r.bodies = append(r.bodies, string(body))
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (r *ntfyRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func build(t *testing.T, cfg *config.Config) *checker.Checker {
	t.Helper()
	chk, closeFn, err := checker.Build(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = closeFn() })
	return chk
}

func TestRunReportsMatchesAndNotifies(t *testing.T) {
	rec := &ntfyRecorder{}
	srv := rec.server(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithWatchlist("Warfare", "Oppenheimer", "Nope"),
		testsupport.WithListings("Warfare - Sottozero", "Openheimer", "Roses"),
		testsupport.WithNtfy(srv.URL+"/cinewatch"),
	)

	report, err := build(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected a run id")
	}
	if report.WatchlistCount != 3 || report.ListingCount != 3 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if len(report.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", report.Matches)
	}
	if report.Matches[0].Entry.Title != "Warfare" || report.Matches[1].Entry.Title != "Oppenheimer" {
		t.Fatalf("matches out of watchlist order: %+v", report.Matches)
	}
	if !report.Notified {
		t.Fatal("expected report to be marked notified")
	}
	titles := rec.snapshot()
	if len(titles) != 1 || titles[0] != "Cinewatch - 2 films showing" {
		t.Fatalf("unexpected notifications %v", titles)
	}
}

func TestRunRepeatWithinDedupWindowIsNotNotified(t *testing.T) {
	rec := &ntfyRecorder{}
	srv := rec.server(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithWatchlist("Warfare"),
		testsupport.WithListings("Warfare"),
		testsupport.WithNtfy(srv.URL+"/cinewatch"),
	)
	cfg.Notifications.DedupWindowSeconds = 600

	chk := build(t, cfg)
	first, err := chk.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := chk.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !first.Notified || second.Notified {
		t.Fatalf("expected only the first run to be notified, got %v then %v", first.Notified, second.Notified)
	}
	if len(second.Matches) != 1 {
		t.Fatalf("suppression must not hide matches, got %+v", second.Matches)
	}
	if titles := rec.snapshot(); len(titles) != 1 {
		t.Fatalf("expected one delivered notification, got %v", titles)
	}
}

func TestRunWithoutMatchesStaysQuiet(t *testing.T) {
	rec := &ntfyRecorder{}
	srv := rec.server(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithWatchlist("Roses"),
		testsupport.WithListings("Warfare"),
		testsupport.WithNtfy(srv.URL),
	)
	cfg.Notifications.NotifyOnEmpty = false

	report, err := build(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Matches == nil || len(report.Matches) != 0 {
		t.Fatalf("expected empty non-nil matches, got %#v", report.Matches)
	}
	if report.Notified {
		t.Fatal("did not expect a notification")
	}
	if titles := rec.snapshot(); len(titles) != 0 {
		t.Fatalf("unexpected notifications %v", titles)
	}
}

func TestRunNotifiesOnEmptyWhenConfigured(t *testing.T) {
	rec := &ntfyRecorder{}
	srv := rec.server(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithWatchlist("Roses"),
		testsupport.WithListings("Warfare"),
		testsupport.WithNtfy(srv.URL),
	)
	cfg.Notifications.NotifyOnEmpty = true

	if _, err := build(t, cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	titles := rec.snapshot()
	if len(titles) != 1 || titles[0] != "Cinewatch - No matches" {
		t.Fatalf("unexpected notifications %v", titles)
	}
}

func TestRunSkipNotify(t *testing.T) {
	rec := &ntfyRecorder{}
	srv := rec.server(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithWatchlist("Warfare"),
		testsupport.WithListings("Warfare"),
		testsupport.WithNtfy(srv.URL),
	)

	report, err := build(t, cfg).RunWithOptions(context.Background(), checker.RunOptions{SkipNotify: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Matches) != 1 || report.Notified {
		t.Fatalf("unexpected report %+v", report)
	}
	if titles := rec.snapshot(); len(titles) != 0 {
		t.Fatalf("unexpected notifications %v", titles)
	}
}

func TestRunFetchFailureIsAnErrorNotAnEmptyResult(t *testing.T) {
	rec := &ntfyRecorder{}
	ntfy := rec.server(t)
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(site.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithWatchlist("Warfare"),
		testsupport.WithNtfy(ntfy.URL),
	)
	cfg.Listings.Provider = config.ProviderComingSoon
	cfg.Listings.BaseURL = site.URL
	cfg.Listings.City = "roma"
	cfg.Notifications.Errors = true

	report, err := build(t, cfg).Run(context.Background())
	if err == nil {
		t.Fatalf("expected fetch error, got report %+v", report)
	}
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var fetchErr *services.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 fetch error, got %v", err)
	}
	if report.Matches != nil {
		t.Fatalf("failed run must not report matches, got %+v", report.Matches)
	}
	titles := rec.snapshot()
	if len(titles) != 1 || titles[0] != "Cinewatch - Error" {
		t.Fatalf("expected one error notification, got %v", titles)
	}
}

func TestRunScrapesComingSoonThroughCache(t *testing.T) {
	var hits atomic.Int32
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/cinema/roma/" {
			http.NotFound(w, req)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, testsupport.ComingSoonPage("Anatomia di una caduta", "Parthenope"))
	}))
	t.Cleanup(site.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithWatchlist("Parthenope", "Dune"),
		testsupport.WithCache(),
	)
	cfg.Listings.Provider = config.ProviderComingSoon
	cfg.Listings.BaseURL = site.URL
	cfg.Listings.City = "roma"
	cfg.Listings.Methods = []string{"container"}

	chk := build(t, cfg)
	for i := 0; i < 2; i++ {
		report, err := chk.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if report.ListingsURL != site.URL+"/cinema/roma/" {
			t.Fatalf("unexpected listings url %q", report.ListingsURL)
		}
		if report.ListingCount != 2 || len(report.Matches) != 1 {
			t.Fatalf("run %d: unexpected report %+v", i, report)
		}
		if got := report.Matches[0].Listing.Metadata["method"]; got != "container" {
			t.Fatalf("unexpected extraction method %q", got)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected the second run to hit the cache, site saw %d requests", got)
	}
}

func TestNewRequiresProviders(t *testing.T) {
	if _, err := checker.New(nil, nil, nil, nil, nil, checker.Options{}, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
