package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinewatch/internal/config"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/notifications"
	"cinewatch/internal/services"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	click    string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()
	ch := make(chan capturedRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ch <- capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			click:    r.Header.Get("Click"),
			body:     string(body),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func sampleSummary() notifications.Summary {
	return notifications.Summary{
		RunID:          "run-1",
		CheckedAt:      time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC),
		WatchlistCount: 12,
		ListingCount:   40,
		ListingsURL:    "https://www.comingsoon.it/cinema/roma/",
		Matches: []matching.MatchResult{
			{
				Entry:        matching.WatchlistEntry{Title: "Oppenheimer"},
				Listing:      matching.CinemaListing{Title: "Openheimer"},
				Score:        20.0 / 21.0,
				Kind:         matching.KindFuzzy,
				MatchedTitle: "Oppenheimer",
			},
			{
				Entry:        matching.WatchlistEntry{Title: "Anatomy of a Fall", AlternativeTitles: []string{"Anatomia di una caduta"}},
				Listing:      matching.CinemaListing{Title: "Anatomia di una caduta", SourceURL: "https://www.comingsoon.it/film/anatomia/1/"},
				Score:        1.0,
				Kind:         matching.KindExact,
				MatchedTitle: "Anatomia di una caduta",
			},
		},
	}
}

func TestNewServiceReturnsNoopWhenNothingConfigured(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg, logging.NewNop())
	if !notifications.IsNoop(svc) {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyMatches(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("noop NotifyMatches: %v", err)
	}
}

func TestSendersFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "https://ntfy.example/cinewatch"
	cfg.Notifications.TelegramBotToken = "token"
	cfg.Notifications.EmailSMTPHost = "smtp.example"
	cfg.Notifications.EmailFrom = "cinewatch@example.com"

	var names []string
	for _, s := range notifications.Senders(&cfg) {
		names = append(names, s.Name())
	}
	// Telegram needs a chat id and email needs recipients.
	if strings.Join(names, ",") != "ntfy" {
		t.Fatalf("unexpected senders %v", names)
	}

	cfg.Notifications.TelegramChatID = "42"
	cfg.Notifications.EmailTo = []string{"me@example.com"}
	names = names[:0]
	for _, s := range notifications.Senders(&cfg) {
		names = append(names, s.Name())
	}
	if strings.Join(names, ",") != "ntfy,telegram,email" {
		t.Fatalf("unexpected senders %v", names)
	}
}

func TestNtfyFormatsMatches(t *testing.T) {
	srv, ch := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg, logging.NewNop())

	if err := svc.NotifyMatches(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("NotifyMatches: %v", err)
	}
	got := <-ch
	if got.title != "Cinewatch - 2 films showing" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.priority != "high" || got.tags != "cinewatch,movie_camera" {
		t.Fatalf("unexpected priority/tags %q %q", got.priority, got.tags)
	}
	if got.click != "https://www.comingsoon.it/cinema/roma/" {
		t.Fatalf("unexpected click url %q", got.click)
	}
	want := "🎬 Now showing from your watchlist:\n" +
		"• Anatomy of a Fall: Anatomia di una caduta (100%, via Anatomia di una caduta)\n" +
		"• Oppenheimer: Openheimer (95%)"
	if got.body != want {
		t.Fatalf("unexpected body:\n%s\nwant:\n%s", got.body, want)
	}
}

func TestNtfyFormatsEmptyAndErrors(t *testing.T) {
	tests := []struct {
		name         string
		send         func(notifications.Service) error
		wantTitle    string
		wantBody     string
		wantPriority string
	}{
		{
			name: "no matches",
			send: func(s notifications.Service) error {
				return s.NotifyMatches(context.Background(), notifications.Summary{WatchlistCount: 3, ListingCount: 7})
			},
			wantTitle:    "Cinewatch - No matches",
			wantBody:     "None of your 3 watchlist films are showing (7 listings checked).",
			wantPriority: "low",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("listings page returned 503"), "check")
			},
			wantTitle:    "Cinewatch - Error",
			wantBody:     "❌ Error during check: listings page returned 503",
			wantPriority: "high",
		},
		{
			name:         "test",
			send:         func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			wantTitle:    "Cinewatch - Test",
			wantBody:     "🧪 Notification system test",
			wantPriority: "low",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ch := newNtfyServer(t, http.StatusOK)
			svc := notifications.NewMulti(logging.NewNop(), notifications.NewNtfy(srv.URL, time.Second))
			if err := tt.send(svc); err != nil {
				t.Fatalf("send: %v", err)
			}
			got := <-ch
			if got.title != tt.wantTitle || got.body != tt.wantBody || got.priority != tt.wantPriority {
				t.Fatalf("unexpected request %+v", got)
			}
		})
	}
}

type recordingSender struct {
	name string
	err  error
	msgs []notifications.Message
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) Send(_ context.Context, msg notifications.Message) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestMultiContinuesAfterFailure(t *testing.T) {
	failing := &recordingSender{name: "broken", err: errors.New("connection refused")}
	ok := &recordingSender{name: "ok"}
	svc := notifications.NewMulti(logging.NewNop(), failing, ok)

	err := svc.TestNotification(context.Background())
	if !errors.Is(err, services.ErrNotify) {
		t.Fatalf("expected ErrNotify, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected cause in error, got %v", err)
	}
	if len(failing.msgs) != 1 || len(ok.msgs) != 1 {
		t.Fatalf("every sender should be tried once: %d %d", len(failing.msgs), len(ok.msgs))
	}
}

func TestNtfyReportsHTTPFailure(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	err := notifications.NewNtfy(srv.URL, time.Second).Send(context.Background(), notifications.Message{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
