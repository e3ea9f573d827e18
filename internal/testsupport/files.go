package testsupport

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteWatchlist writes a watchlist TOML file with one [[film]] per title.
func WriteWatchlist(t testing.TB, path string, titles ...string) {
	t.Helper()

	var b strings.Builder
	for _, title := range titles {
		fmt.Fprintf(&b, "[[film]]\ntitle = %q\n\n", title)
	}
	WriteFile(t, path, b.String())
}

// WriteListings writes a listings TOML file with one [[listing]] per title.
func WriteListings(t testing.TB, path string, titles ...string) {
	t.Helper()

	var b strings.Builder
	for _, title := range titles {
		fmt.Fprintf(&b, "[[listing]]\ntitle = %q\n\n", title)
	}
	WriteFile(t, path, b.String())
}

// ComingSoonPage renders a minimal city page in the comingsoon.it layout with
// one film container per title.
func ComingSoonPage(titles ...string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body>\n")
	for i, title := range titles {
		fmt.Fprintf(&b, `<div class="header-scheda streaming min no-bg container-fluid pbm"><a class="tit_olo h1" href="/film/f%d/%d/scheda/">%s</a></div>`+"\n",
			i, i, html.EscapeString(title))
	}
	b.WriteString("</body></html>\n")
	return b.String()
}
