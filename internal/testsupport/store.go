package testsupport

import (
	"context"
	"testing"

	"cinewatch/internal/config"
	"cinewatch/internal/pagecache"
)

// MustOpenCache opens the page cache at cfg.Cache.Path and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *pagecache.Store {
	t.Helper()

	store, err := pagecache.Open(context.Background(), cfg.Cache.Path)
	if err != nil {
		t.Fatalf("pagecache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
