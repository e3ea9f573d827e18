package matching

// Kind classifies how a match was established.
type Kind string

const (
	KindExact Kind = "exact"
	KindFuzzy Kind = "fuzzy"
)

// Branch names the scoring step that produced a score.
type Branch string

const (
	BranchExact       Branch = "exact"
	BranchContainment Branch = "containment"
	BranchFuzzy       Branch = "fuzzy"
)

// WatchlistEntry is one film the user wants to see.
type WatchlistEntry struct {
	Title             string   `json:"title"`
	AlternativeTitles []string `json:"alternative_titles,omitempty"`
	SourceURL         string   `json:"source_url,omitempty"`
}

// Variants returns the primary title followed by the alternative titles, in order.
func (e WatchlistEntry) Variants() []string {
	variants := make([]string, 0, 1+len(e.AlternativeTitles))
	variants = append(variants, e.Title)
	variants = append(variants, e.AlternativeTitles...)
	return variants
}

// CinemaListing is one film currently showing.
type CinemaListing struct {
	Title     string            `json:"title"`
	SourceURL string            `json:"source_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MatchResult is the best listing found for a watchlist entry.
type MatchResult struct {
	Entry        WatchlistEntry `json:"entry"`
	Listing      CinemaListing  `json:"listing"`
	Score        float64        `json:"score"`
	Kind         Kind           `json:"kind"`
	MatchedTitle string         `json:"matched_title"`
}

// Score is the outcome of comparing two titles.
type Score struct {
	Value  float64 `json:"value"`
	Kind   Kind    `json:"kind"`
	Branch Branch  `json:"branch"`
}
