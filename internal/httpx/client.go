package httpx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"cinewatch/internal/logging"
	"cinewatch/internal/services"
)

const (
	defaultTimeout = 20 * time.Second
	defaultAccept  = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
)

// Options configures the scraping client.
type Options struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
	ProxyURL       string
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Request describes one page fetch.
type Request struct {
	Source  string
	URL     string
	Headers map[string]string
}

// Page is a fetched HTML document.
type Page struct {
	URL       string
	Body      []byte
	FetchedAt time.Time
	FromCache bool
}

// Fetcher retrieves pages. Implementations return *services.FetchError on
// failure so callers can tell a failed fetch from an empty page.
type Fetcher interface {
	Get(ctx context.Context, req Request) (Page, error)
}

// Client fetches pages with browser-like headers over resty.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient builds a Client. A proxy forces a fresh connection per request.
func NewClient(opts Options) (*Client, error) {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
	if proxy := strings.TrimSpace(opts.ProxyURL); proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New()
	client.GetClient().Transport = base
	client.SetCookieJar(jar)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", defaultAccept)
	if lang := strings.TrimSpace(opts.AcceptLanguage); lang != "" {
		client.SetHeader("Accept-Language", lang)
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	pool := globalUA
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get("User-Agent") != "" {
			return nil
		}
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		} else {
			req.Header.Set("User-Agent", pool.random())
		}
		return nil
	})

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &Client{
		http:   client,
		logger: logging.NewComponentLogger(opts.Logger, "httpx"),
	}, nil
}

// Get fetches req.URL and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, req Request) (Page, error) {
	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(req.Headers).
		Get(req.URL)
	if err != nil {
		return Page{}, &services.FetchError{Source: req.Source, URL: req.URL, Err: err}
	}

	finalURL := req.URL
	if raw := res.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	logging.WithContext(ctx, c.logger).Debug("page fetched",
		logging.String("url", finalURL),
		logging.Int("status", res.StatusCode()),
		logging.Int("bytes", len(res.Body())),
		logging.Duration("duration", time.Since(start)),
	)

	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return Page{}, &services.FetchError{
			Source: req.Source,
			URL:    req.URL,
			Err: &services.HTTPStatusError{
				URL:        finalURL,
				StatusCode: res.StatusCode(),
				Location:   res.Header().Get("Location"),
			},
		}
	}
	if reason, blocked := detectBlocked(res.Body()); blocked {
		return Page{}, &services.FetchError{
			Source: req.Source,
			URL:    req.URL,
			Err:    &services.BlockedError{URL: finalURL, Reason: reason},
		}
	}

	return Page{URL: finalURL, Body: res.Body(), FetchedAt: time.Now().UTC()}, nil
}

var blockMarkers = []struct {
	marker string
	reason string
}{
	{"<title>Just a moment...</title>", "challenge"},
	{"cf-browser-verification", "challenge"},
	{"challenge-platform", "challenge"},
	{"g-recaptcha", "captcha"},
	{"h-captcha", "captcha"},
}

// detectBlocked reports whether body is an interstitial challenge page rather
// than content.
func detectBlocked(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	head := body
	if len(head) > 16*1024 {
		head = head[:16*1024]
	}
	text := string(head)
	for _, m := range blockMarkers {
		if strings.Contains(text, m.marker) {
			return m.reason, true
		}
	}
	return "", false
}
