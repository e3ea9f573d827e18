// Package httpx fetches HTML pages for the scrapers.
//
// Client wraps resty with browser-like Accept headers, a rotating user agent,
// an optional proxy, and optional request pacing. Non-2xx answers and
// challenge pages come back as *services.FetchError so a failed fetch is never
// mistaken for an empty listing. CachedFetcher puts a page store in front of
// any Fetcher.
package httpx
