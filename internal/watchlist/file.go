package watchlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"cinewatch/internal/config"
	"cinewatch/internal/matching"
	"cinewatch/internal/services"
)

// FileProvider reads a watchlist from a local TOML file:
//
//	[[film]]
//	title = "Anatomy of a Fall"
//	alternative_titles = ["Anatomia di una caduta"]
type FileProvider struct {
	Path string
}

type watchlistFile struct {
	Films []struct {
		Title             string   `toml:"title"`
		AlternativeTitles []string `toml:"alternative_titles"`
		URL               string   `toml:"url"`
	} `toml:"film"`
}

func (*FileProvider) Name() string { return "file" }

func (p *FileProvider) Entries(ctx context.Context) ([]matching.WatchlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := config.ExpandPath(p.Path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("watchlist file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &services.FetchError{Source: p.Name(), URL: path, Err: err}
	}
	var file watchlistFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrParse, "watchlist", "decode file", path, fmt.Errorf("decode watchlist file: %w", err))
	}

	entries := make([]matching.WatchlistEntry, 0, len(file.Films))
	for _, f := range file.Films {
		title := strings.TrimSpace(f.Title)
		entries = append(entries, matching.WatchlistEntry{
			Title:             title,
			AlternativeTitles: mergeTitles(title, nil, f.AlternativeTitles...),
			SourceURL:         strings.TrimSpace(f.URL),
		})
	}
	return dedupe(entries), nil
}
