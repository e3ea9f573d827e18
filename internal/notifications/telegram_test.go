package notifications_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/notifications"
)

func TestTelegramSendsHTMLMessage(t *testing.T) {
	type request struct {
		path string
		body map[string]any
	}
	ch := make(chan request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		ch <- request{path: r.URL.Path, body: body}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	svc := notifications.NewMulti(logging.NewNop(), notifications.NewTelegram(srv.URL+"/", "123:abc", "-10042", time.Second))
	if err := svc.NotifyMatches(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("NotifyMatches: %v", err)
	}
	got := <-ch
	if got.path != "/bot123:abc/sendMessage" {
		t.Fatalf("unexpected path %q", got.path)
	}
	if got.body["chat_id"] != "-10042" || got.body["parse_mode"] != "HTML" {
		t.Fatalf("unexpected body %v", got.body)
	}
	text, _ := got.body["text"].(string)
	wantLines := []string{
		"<b>Cinewatch - 2 films showing</b>",
		`• <b>Anatomy of a Fall</b>: <a href="https://www.comingsoon.it/film/anatomia/1/">Anatomia di una caduta</a> (100%)`,
		"• <b>Oppenheimer</b>: Openheimer (95%)",
	}
	for _, line := range wantLines {
		if !strings.Contains(text, line) {
			t.Fatalf("text missing %q:\n%s", line, text)
		}
	}
}

func TestTelegramEscapesPlainText(t *testing.T) {
	ch := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		ch <- body.Text
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sender := notifications.NewTelegram(srv.URL, "t", "1", time.Second)
	if err := sender.Send(context.Background(), notifications.Message{Title: "A & B", Text: "<oops>"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := <-ch; got != "<b>A &amp; B</b>\n&lt;oops&gt;" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestTelegramCapsLongMessages(t *testing.T) {
	ch := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		ch <- body.Text
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	summary := notifications.Summary{WatchlistCount: 300, ListingCount: 300}
	for i := 0; i < 300; i++ {
		title := fmt.Sprintf("Una lunghissima retrospettiva autoriale numero %03d", i)
		summary.Matches = append(summary.Matches, matching.MatchResult{
			Entry:   matching.WatchlistEntry{Title: title},
			Listing: matching.CinemaListing{Title: title, SourceURL: fmt.Sprintf("https://www.comingsoon.it/film/retro/%d/", i)},
			Score:   1.0,
			Kind:    matching.KindExact,
		})
	}
	svc := notifications.NewMulti(logging.NewNop(), notifications.NewTelegram(srv.URL, "t", "1", time.Second))
	if err := svc.NotifyMatches(context.Background(), summary); err != nil {
		t.Fatalf("NotifyMatches: %v", err)
	}
	text := <-ch
	if n := utf8.RuneCountInString(text); n > 4096 {
		t.Fatalf("text has %d runes, over the 4096 limit", n)
	}
	if !strings.Contains(text, "retrospettiva autoriale numero 000") {
		t.Fatalf("expected the first match to be kept:\n%s", text)
	}
	lines := strings.Split(text, "\n")
	last := lines[len(lines)-1]
	shown := strings.Count(text, "\n• ")
	if want := fmt.Sprintf("… +%d more", 300-shown); last != want {
		t.Fatalf("last line = %q, want %q", last, want)
	}

	sender := notifications.NewTelegram(srv.URL, "t", "1", time.Second)
	if err := sender.Send(context.Background(), notifications.Message{Title: "Cinewatch - Error", Text: strings.Repeat("x", 10000)}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n := utf8.RuneCountInString(<-ch); n != 4096 {
		t.Fatalf("expected long text trimmed to exactly 4096 runes, got %d", n)
	}
}

func TestTelegramReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := notifications.NewTelegram(srv.URL, "t", "1", time.Second).Send(context.Background(), notifications.Message{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected chat not found error, got %v", err)
	}
}
