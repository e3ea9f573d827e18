package testsupport

import (
	"path/filepath"
	"testing"

	"cinewatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Both providers read local files so no test reaches the network; the files
// start empty and are filled with WithWatchlist and WithListings.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Watchlist.Provider = config.ProviderFile
	cfgVal.Watchlist.File = filepath.Join(base, "watchlist.toml")
	cfgVal.Listings.Provider = config.ProviderFile
	cfgVal.Listings.File = filepath.Join(base, "listings.toml")
	cfgVal.Cache.Enabled = false
	cfgVal.Cache.Path = filepath.Join(base, "state", "pagecache.db")
	cfgVal.Aliases.Enabled = false
	cfgVal.Notifications.DedupWindowSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	WriteWatchlist(t, cfgVal.Watchlist.File)
	WriteListings(t, cfgVal.Listings.File)

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWatchlist writes the given film titles to the watchlist file.
func WithWatchlist(titles ...string) ConfigOption {
	return func(b *configBuilder) {
		WriteWatchlist(b.t, b.cfg.Watchlist.File, titles...)
	}
}

// WithListings writes the given titles to the listings file.
func WithListings(titles ...string) ConfigOption {
	return func(b *configBuilder) {
		WriteListings(b.t, b.cfg.Listings.File, titles...)
	}
}

// WithNtfy points notifications at an ntfy endpoint, typically an
// httptest server URL.
func WithNtfy(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = endpoint
	}
}

// WithCache enables the page cache inside the temp state directory.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
