package watchlist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinewatch/internal/httpx"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/services"
)

const (
	defaultLetterboxdURL = "https://letterboxd.com"
	defaultMaxPages      = 10
)

// Letterboxd scrapes a public Letterboxd watchlist.
type Letterboxd struct {
	BaseURL  string
	Username string
	MaxPages int
	// FetchAlternativeTitles loads each film page to collect its original
	// and alternative titles.
	FetchAlternativeTitles bool
	Fetcher                httpx.Fetcher
	Logger                 *slog.Logger
}

func (*Letterboxd) Name() string { return "letterboxd" }

func (p *Letterboxd) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return defaultLetterboxdURL
	}
	return strings.TrimRight(u, "/")
}

// PageURL returns the URL of watchlist page n (1-based).
func (p *Letterboxd) PageURL(n int) string {
	return fmt.Sprintf("%s/%s/watchlist/page/%d/", p.baseURL(), url.PathEscape(strings.TrimSpace(p.Username)), n)
}

// Entries walks the watchlist pages until one is empty or MaxPages is reached.
func (p *Letterboxd) Entries(ctx context.Context) ([]matching.WatchlistEntry, error) {
	if strings.TrimSpace(p.Username) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "watchlist", "letterboxd", "username is empty", nil)
	}
	if p.Fetcher == nil {
		return nil, errors.New("letterboxd: fetcher is nil")
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "watchlist"))

	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	var entries []matching.WatchlistEntry
	for n := 1; n <= maxPages; n++ {
		pageURL := p.PageURL(n)
		page, err := p.Fetcher.Get(ctx, httpx.Request{Source: p.Name(), URL: pageURL})
		if err != nil {
			return nil, err
		}
		found, err := ParseWatchlistPage(page.Body, pageURL)
		if err != nil {
			return nil, services.Wrap(services.ErrParse, "watchlist", "parse page", pageURL, err)
		}
		logger.Debug("watchlist page parsed",
			logging.Int("page", n),
			logging.Int("films", len(found)),
			logging.Bool("from_cache", page.FromCache),
		)
		if len(found) == 0 {
			break
		}
		entries = append(entries, found...)
		if n == maxPages {
			logger.Info("watchlist page limit reached",
				logging.Int("max_pages", maxPages),
				logging.String(logging.FieldImpact, "films beyond this page are not checked"),
			)
		}
	}
	entries = dedupe(entries)

	if p.FetchAlternativeTitles {
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entries[i] = p.enrich(ctx, logger, entries[i])
		}
	}
	return entries, nil
}

// enrich adds alternative titles from the film page. Failures keep the
// entry as it was.
func (p *Letterboxd) enrich(ctx context.Context, logger *slog.Logger, entry matching.WatchlistEntry) matching.WatchlistEntry {
	if entry.SourceURL == "" {
		return entry
	}
	page, err := p.Fetcher.Get(ctx, httpx.Request{Source: p.Name(), URL: entry.SourceURL})
	if err != nil {
		logging.WarnWithContext(logger, "film page fetch failed", "alternative_titles_failed",
			logging.String("watchlist_title", entry.Title),
			logging.String("url", entry.SourceURL),
			logging.Error(err),
			logging.String(logging.FieldImpact, "matching uses the primary title only"),
		)
		return entry
	}
	alts, err := ParseFilmPage(page.Body)
	if err != nil {
		logging.WarnWithContext(logger, "film page parse failed", "alternative_titles_failed",
			logging.String("watchlist_title", entry.Title),
			logging.Error(err),
		)
		return entry
	}
	entry.AlternativeTitles = mergeTitles(entry.Title, entry.AlternativeTitles, alts...)
	return entry
}

// ParseWatchlistPage extracts the films listed on one watchlist page.
func ParseWatchlistPage(html []byte, pageURL string) ([]matching.WatchlistEntry, error) {
	if len(html) == 0 {
		return nil, errors.New("html is empty")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var entries []matching.WatchlistEntry
	doc.Find("[data-film-slug]").Each(func(_ int, s *goquery.Selection) {
		title := firstNonEmpty(
			attr(s, "data-film-name"),
			attr(s, "data-item-name"),
			attr(s.Find("img[alt]").First(), "alt"),
		)
		if title == "" {
			return
		}
		link := firstNonEmpty(attr(s, "data-target-link"), attr(s, "data-film-link"))
		if link == "" {
			link = "/film/" + attr(s, "data-film-slug") + "/"
		}
		entries = append(entries, matching.WatchlistEntry{
			Title:     title,
			SourceURL: resolveURL(pageURL, link),
		})
	})
	return entries, nil
}

// ParseFilmPage returns the original title and the alternative titles listed
// on a Letterboxd film page.
func ParseFilmPage(html []byte) ([]string, error) {
	if len(html) == 0 {
		return nil, errors.New("html is empty")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var titles []string
	original := collapseSpace(doc.Find("h2.originalname").First().Text())
	if original == "" {
		original = collapseSpace(doc.Find(".originalname").First().Text())
	}
	if original != "" {
		titles = append(titles, original)
	}

	doc.Find("#tab-details h3").Each(func(_ int, h *goquery.Selection) {
		label := strings.ToLower(collapseSpace(h.Text()))
		if !strings.HasPrefix(label, "alternative title") {
			return
		}
		h.Next().Find("p").Each(func(_ int, p *goquery.Selection) {
			for _, part := range strings.Split(p.Text(), ",") {
				if t := collapseSpace(part); t != "" {
					titles = append(titles, t)
				}
			}
		})
	})
	return titles, nil
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return collapseSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
