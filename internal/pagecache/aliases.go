package pagecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cinewatch/internal/textutil"
)

// GetAliases returns previously resolved alternative titles for title in
// language. An empty, found result means the lookup ran and returned nothing.
func (s *Store) GetAliases(ctx context.Context, title, language string, maxAge time.Duration) ([]string, bool, error) {
	var (
		raw        string
		resolvedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT aliases_json, resolved_at FROM title_aliases WHERE title_key = ? AND language = ?`,
		aliasKey(title), language,
	).Scan(&raw, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get aliases: %w", err)
	}
	if maxAge > 0 && s.now().Sub(time.UnixMilli(resolvedAt)) >= maxAge {
		return nil, false, nil
	}
	var aliases []string
	if err := json.Unmarshal([]byte(raw), &aliases); err != nil {
		return nil, false, fmt.Errorf("decode aliases: %w", err)
	}
	return aliases, true, nil
}

// PutAliases records the alternative titles resolved for title in language.
func (s *Store) PutAliases(ctx context.Context, title, language string, aliases []string) error {
	if aliases == nil {
		aliases = []string{}
	}
	raw, err := json.Marshal(aliases)
	if err != nil {
		return fmt.Errorf("encode aliases: %w", err)
	}
	_, err = s.execWithRetry(ctx,
		`INSERT INTO title_aliases (title_key, language, aliases_json, resolved_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(title_key, language) DO UPDATE SET aliases_json = excluded.aliases_json, resolved_at = excluded.resolved_at`,
		aliasKey(title), language, string(raw), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put aliases: %w", err)
	}
	return nil
}

func aliasKey(title string) string {
	return textutil.Fold(title)
}
