package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Stats summarizes cache contents.
type Stats struct {
	Path    string    `json:"path"`
	Pages   int       `json:"pages"`
	Bytes   int64     `json:"bytes"`
	Aliases int       `json:"aliases"`
	Oldest  time.Time `json:"oldest,omitempty"`
	Newest  time.Time `json:"newest,omitempty"`
}

// Get returns the cached body for url when it was fetched less than maxAge ago.
func (s *Store) Get(ctx context.Context, url string, maxAge time.Duration) ([]byte, time.Time, bool, error) {
	var (
		body      []byte
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM pages WHERE url = ?`, url).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("get page: %w", err)
	}
	at := time.UnixMilli(fetchedAt).UTC()
	if maxAge > 0 && s.now().Sub(at) >= maxAge {
		return nil, time.Time{}, false, nil
	}
	return body, at, true, nil
}

// Put stores body for url, replacing any earlier copy.
func (s *Store) Put(ctx context.Context, url string, body []byte, fetchedAt time.Time) error {
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}
	if body == nil {
		body = []byte{}
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO pages (url, body, fetched_at) VALUES (?, ?, ?)
         ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, fetchedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put page: %w", err)
	}
	return nil
}

// Prune deletes pages fetched more than olderThan ago and reports how many
// rows were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.pruneTable(ctx, `DELETE FROM pages WHERE fetched_at < ?`, olderThan)
}

// PruneAliases removes alias lookups resolved more than olderThan ago.
func (s *Store) PruneAliases(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.pruneTable(ctx, `DELETE FROM title_aliases WHERE resolved_at < ?`, olderThan)
}

func (s *Store) pruneTable(ctx context.Context, query string, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UTC().UnixMilli()
	res, err := s.execWithRetry(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear removes every cached page and alias.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var total int64
	for _, query := range []string{`DELETE FROM pages`, `DELETE FROM title_aliases`} {
		res, err := s.execWithRetry(ctx, query)
		if err != nil {
			return total, fmt.Errorf("clear cache: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// Stats reports row counts, stored bytes, and the fetch time range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	var oldest, newest sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(LENGTH(body)), 0), MIN(fetched_at), MAX(fetched_at) FROM pages`,
	).Scan(&stats.Pages, &stats.Bytes, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("page stats: %w", err)
	}
	if oldest.Valid {
		stats.Oldest = time.UnixMilli(oldest.Int64).UTC()
	}
	if newest.Valid {
		stats.Newest = time.UnixMilli(newest.Int64).UTC()
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM title_aliases`).Scan(&stats.Aliases); err != nil {
		return Stats{}, fmt.Errorf("alias stats: %w", err)
	}
	return stats, nil
}
