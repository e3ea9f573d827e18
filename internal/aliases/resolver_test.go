package aliases_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cinewatch/internal/aliases"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/pagecache"
)

type stubGenerator struct {
	calls   atomic.Int32
	answers map[string]string
	err     error
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	if g.err != nil {
		return "", g.err
	}
	for title, answer := range g.answers {
		if strings.Contains(prompt, title) {
			return answer, nil
		}
	}
	return `{"titles": []}`, nil
}

func openCache(t *testing.T) *pagecache.Store {
	t.Helper()
	store, err := pagecache.Open(context.Background(), filepath.Join(t.TempDir(), "pages.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestResolveCleansAndCaches(t *testing.T) {
	gen := &stubGenerator{answers: map[string]string{
		"Anatomy of a Fall": `{"titles": [" Anatomia di una caduta ", "anatomy of a fall", "", "ANATOMIA DI UNA CADUTA"]}`,
	}}
	r := &aliases.Resolver{Generator: gen, Cache: openCache(t), Logger: logging.NewNop()}

	for i := 0; i < 2; i++ {
		got, err := r.Resolve(context.Background(), "Anatomy of a Fall")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if diff := cmp.Diff([]string{"Anatomia di una caduta"}, got); diff != "" {
			t.Fatalf("aliases mismatch (-want +got):\n%s", diff)
		}
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("expected one model call, got %d", gen.calls.Load())
	}
}

func TestResolveRejectsMalformedResponse(t *testing.T) {
	gen := &stubGenerator{answers: map[string]string{"Warfare": "not json"}}
	r := &aliases.Resolver{Generator: gen}
	if _, err := r.Resolve(context.Background(), "Warfare"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEnrichSkipsEntriesWithAlternatives(t *testing.T) {
	gen := &stubGenerator{answers: map[string]string{
		"The Roses":         `{"titles": ["I Roses"]}`,
		"Anatomy of a Fall": `{"titles": ["Should not be used"]}`,
	}}
	r := &aliases.Resolver{Generator: gen, Logger: logging.NewNop()}
	entries := []matching.WatchlistEntry{
		{Title: "The Roses"},
		{Title: "Anatomy of a Fall", AlternativeTitles: []string{"Anatomie d'une chute"}},
		{Title: "Warfare"},
	}
	got := r.Enrich(context.Background(), entries)

	want := []matching.WatchlistEntry{
		{Title: "The Roses", AlternativeTitles: []string{"I Roses"}},
		{Title: "Anatomy of a Fall", AlternativeTitles: []string{"Anatomie d'une chute"}},
		{Title: "Warfare"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if entries[0].AlternativeTitles != nil {
		t.Fatal("Enrich must not modify its input")
	}
	if gen.calls.Load() != 2 {
		t.Fatalf("expected 2 model calls, got %d", gen.calls.Load())
	}
}

func TestEnrichToleratesFailures(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	r := &aliases.Resolver{Generator: gen, Logger: logging.NewNop()}
	entries := []matching.WatchlistEntry{{Title: "The Roses"}}
	got := r.Enrich(context.Background(), entries)
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Fatalf("failed lookups should leave entries unchanged (-want +got):\n%s", diff)
	}
}
