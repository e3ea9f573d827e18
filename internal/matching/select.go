package matching

import (
	"context"
	"runtime"
	"sync"
)

// Selector picks the best listing for each watchlist entry.
type Selector struct {
	Matcher   Matcher
	Threshold float64
	Workers   int
}

// NewSelector builds a selector around the default TitleMatcher. A
// non-positive threshold falls back to DefaultThreshold.
func NewSelector(threshold float64, workers int) *Selector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Selector{Matcher: NewTitleMatcher(), Threshold: threshold, Workers: workers}
}

// BestMatch scores every usable title variant of entry against every usable
// listing title and returns the highest-scoring pair when it exceeds the
// threshold. The first pair reaching the maximum wins ties.
func (s *Selector) BestMatch(entry WatchlistEntry, listings []CinemaListing) (MatchResult, bool) {
	matcher := s.Matcher
	if matcher == nil {
		matcher = TitleMatcher{}
	}
	var (
		best  MatchResult
		found bool
	)
	for _, variant := range entry.Variants() {
		if !Usable(variant) {
			continue
		}
		for _, listing := range listings {
			if !Usable(listing.Title) {
				continue
			}
			score := matcher.Score(variant, listing.Title)
			if found && score.Value <= best.Score {
				continue
			}
			best = MatchResult{
				Entry:        entry,
				Listing:      listing,
				Score:        score.Value,
				Kind:         score.Kind,
				MatchedTitle: variant,
			}
			found = true
		}
	}
	if !found || best.Score <= s.Threshold {
		return MatchResult{}, false
	}
	return best, true
}

// MatchAll runs BestMatch for every entry on a bounded worker pool and
// returns the accepted results in watchlist order. An empty slice means no
// entry matched. Cancellation stops scheduling new entries and returns the
// context error.
func (s *Selector) MatchAll(ctx context.Context, entries []WatchlistEntry, listings []CinemaListing) ([]MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	type slot struct {
		result MatchResult
		ok     bool
	}
	slots := make([]slot, len(entries))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				result, ok := s.BestMatch(entries[i], listings)
				slots[i] = slot{result: result, ok: ok}
			}
		}()
	}

	var err error
feed:
	for i := range entries {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	results := make([]MatchResult, 0, len(entries))
	for _, sl := range slots {
		if sl.ok {
			results = append(results, sl.result)
		}
	}
	return results, nil
}
