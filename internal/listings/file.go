package listings

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

// FileProvider reads listings from a local TOML file:
//
//	[[listing]]
//	title = "Warfare"
//	url = "https://example.com/warfare"
type FileProvider struct {
	Path string
}

type listingFile struct {
	Listings []struct {
		Title    string            `toml:"title"`
		URL      string            `toml:"url"`
		Metadata map[string]string `toml:"metadata"`
	} `toml:"listing"`
}

func (*FileProvider) Name() string { return "file" }

func (p *FileProvider) Fetch(ctx context.Context) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	path, err := config.ExpandPath(p.Path)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(path) == "" {
		return nil, "", errors.New("listings file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, &services.FetchError{Source: p.Name(), URL: path, Err: err}
	}
	return data, path, nil
}

func (*FileProvider) Parse(data []byte, pageURL string) ([]matching.CinemaListing, error) {
	var file listingFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode listings file: %w", err)
	}
	items := make([]matching.CinemaListing, 0, len(file.Listings))
	for _, l := range file.Listings {
		source := strings.TrimSpace(l.URL)
		if source == "" {
			source = pageURL
		}
		items = append(items, matching.CinemaListing{
			Title:     strings.TrimSpace(l.Title),
			SourceURL: source,
			Metadata:  l.Metadata,
		})
	}
	return dedupe(items), nil
}
