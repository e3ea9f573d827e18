package listings_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cinewatch/internal/config"
	"cinewatch/internal/listings"
	"cinewatch/internal/logging"
	"cinewatch/internal/services"
)

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.toml")
	content := `
[[listing]]
title = "Warfare"
url = "https://example.test/warfare"

[[listing]]
title = " I Roses "

[listing.metadata]
cinema = "Nuovo Sacher"

[[listing]]
title = "WARFARE"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write listings: %v", err)
	}

	items, err := listings.Load(context.Background(), &listings.FileProvider{Path: path}, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"Warfare", "I Roses"}, titles(items)); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if items[0].SourceURL != "https://example.test/warfare" {
		t.Fatalf("unexpected url %q", items[0].SourceURL)
	}
	if items[1].SourceURL != path || items[1].Metadata["cinema"] != "Nuovo Sacher" {
		t.Fatalf("unexpected second listing %+v", items[1])
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	_, err := listings.Load(context.Background(), &listings.FileProvider{Path: filepath.Join(t.TempDir(), "nope.toml")}, logging.NewNop())
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestFileProviderInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[[listing]\ntitle = "), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := listings.Load(context.Background(), &listings.FileProvider{Path: path}, logging.NewNop())
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Listings.Provider = config.ProviderFile
	cfg.Listings.File = "/tmp/listings.toml"
	p, err := listings.New(&cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "file" {
		t.Fatalf("unexpected provider %q", p.Name())
	}

	cfg.Listings.Provider = config.ProviderComingSoon
	if _, err := listings.New(&cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without fetcher, got %v", err)
	}

	cfg.Listings.Provider = "cinemaclock"
	if _, err := listings.New(&cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
