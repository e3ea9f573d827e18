// Package pagecache is a small SQLite store for fetched HTML pages and
// resolved title aliases.
//
// Pages are keyed by URL and served while younger than the configured TTL so
// repeated checks within a short window do not hit the scraped sites again.
// Only source material is cached; match results are never persisted.
package pagecache
