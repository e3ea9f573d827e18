package listings

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"cinewatch/internal/httpx"
	"cinewatch/internal/matching"
)

// Method names one extraction pass over the listings page.
type Method string

const (
	MethodContainer Method = "container"
	MethodHeading   Method = "heading"
	MethodFilmLink  Method = "film_link"
	MethodImageAlt  Method = "image_alt"
)

const (
	defaultComingSoonURL = "https://www.comingsoon.it"
	defaultCity          = "roma"

	containerSelector = "div.header-scheda.streaming.min.no-bg.container-fluid.pbm"
	headingsPerTag    = 10
	filmLinksLimit    = 20
)

// AllMethods returns every extraction method in run order.
func AllMethods() []Method {
	return []Method{MethodContainer, MethodHeading, MethodFilmLink, MethodImageAlt}
}

// ParseMethods converts configured method names, keeping run order. Unknown
// names are ignored and an empty selection means all methods.
func ParseMethods(names []string) []Method {
	wanted := make(map[Method]struct{}, len(names))
	for _, name := range names {
		wanted[Method(strings.ToLower(strings.TrimSpace(name)))] = struct{}{}
	}
	out := make([]Method, 0, len(wanted))
	for _, m := range AllMethods() {
		if _, ok := wanted[m]; ok {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return AllMethods()
	}
	return out
}

// ComingSoon scrapes the per-city cinema page of comingsoon.it.
type ComingSoon struct {
	BaseURL string
	City    string
	Methods []Method
	Fetcher httpx.Fetcher
}

func (*ComingSoon) Name() string { return "comingsoon" }

func (p *ComingSoon) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return defaultComingSoonURL
	}
	return strings.TrimRight(u, "/")
}

func (p *ComingSoon) city() string {
	c := strings.ToLower(strings.TrimSpace(p.City))
	if c == "" {
		return defaultCity
	}
	return c
}

// PageURL is the listings page for the configured city.
func (p *ComingSoon) PageURL() string {
	return p.baseURL() + "/cinema/" + url.PathEscape(p.city()) + "/"
}

func (p *ComingSoon) Fetch(ctx context.Context) ([]byte, string, error) {
	if p.Fetcher == nil {
		return nil, "", errors.New("comingsoon: fetcher is nil")
	}
	pageURL := p.PageURL()
	page, err := p.Fetcher.Get(ctx, httpx.Request{
		Source:  p.Name(),
		URL:     pageURL,
		Headers: map[string]string{"Referer": p.baseURL() + "/"},
	})
	if err != nil {
		return nil, pageURL, err
	}
	return page.Body, pageURL, nil
}

// Parse runs the configured extraction methods in order and merges their
// titles, dropping case-insensitive duplicates.
func (p *ComingSoon) Parse(html []byte, pageURL string) ([]matching.CinemaListing, error) {
	if len(html) == 0 {
		return nil, errors.New("html is empty")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	methods := p.Methods
	if len(methods) == 0 {
		methods = AllMethods()
	}
	city := p.city()

	var items []matching.CinemaListing
	add := func(title, method, filmURL string) {
		title = collapseSpace(title)
		if title == "" {
			return
		}
		meta := map[string]string{"city": city, "method": method}
		source := pageURL
		if filmURL != "" {
			resolved := resolveURL(pageURL, filmURL)
			meta["film_url"] = resolved
			source = resolved
		}
		items = append(items, matching.CinemaListing{Title: title, SourceURL: source, Metadata: meta})
	}

	for _, method := range methods {
		switch method {
		case MethodContainer:
			doc.Find(containerSelector).Each(func(_ int, s *goquery.Selection) {
				link := s.Find("a.tit_olo.h1").First()
				if link.Length() == 0 {
					return
				}
				href, _ := link.Attr("href")
				add(link.Text(), string(method), href)
			})
		case MethodHeading:
			for _, tag := range []string{"h1", "h2", "h3"} {
				headings := doc.Find(tag)
				headings.Slice(0, min(headingsPerTag, headings.Length())).Each(func(_ int, s *goquery.Selection) {
					text := collapseSpace(s.Text())
					if n := utf8.RuneCountInString(text); n > 3 && n < 100 {
						add(text, string(method), "")
					}
				})
			}
		case MethodFilmLink:
			links := doc.Find("a[href*='/film/']")
			links.Slice(0, min(filmLinksLimit, links.Length())).Each(func(_ int, s *goquery.Selection) {
				text := collapseSpace(s.Text())
				if utf8.RuneCountInString(text) <= 3 {
					return
				}
				href, _ := s.Attr("href")
				add(text, string(method), href)
			})
		case MethodImageAlt:
			doc.Find("img[alt]").Each(func(_ int, s *goquery.Selection) {
				alt, _ := s.Attr("alt")
				alt = strings.TrimSpace(alt)
				if utf8.RuneCountInString(alt) <= 3 || alt == "Poster" {
					return
				}
				add(alt, string(method), "")
			})
		}
	}
	return dedupe(items), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
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
