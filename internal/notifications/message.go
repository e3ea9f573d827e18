package notifications

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cinewatch/internal/matching"
)

// Summary is the outcome of one check as seen by notifiers.
type Summary struct {
	RunID          string
	CheckedAt      time.Time
	WatchlistCount int
	ListingCount   int
	// ListingsURL is the page the listings were read from, when known.
	ListingsURL string
	Matches     []matching.MatchResult
}

// Message is a rendered notification. Senders that support rich formats
// render from Summary when it is set.
type Message struct {
	Title    string
	Text     string
	Tags     []string
	Priority string
	ClickURL string
	Summary  *Summary
}

func (m Message) key() string {
	return m.Title + "\x00" + m.Text
}

func matchesMessage(s Summary) Message {
	msg := Message{
		Tags:     []string{"cinewatch", "movie_camera"},
		ClickURL: s.ListingsURL,
		Summary:  &s,
	}
	if len(s.Matches) == 0 {
		msg.Title = "Cinewatch - No matches"
		msg.Text = fmt.Sprintf("None of your %d watchlist films are showing (%d listings checked).", s.WatchlistCount, s.ListingCount)
		msg.Priority = "low"
		return msg
	}

	if len(s.Matches) == 1 {
		msg.Title = "Cinewatch - 1 film showing"
	} else {
		msg.Title = fmt.Sprintf("Cinewatch - %d films showing", len(s.Matches))
	}
	msg.Priority = "high"

	var b strings.Builder
	b.WriteString("🎬 Now showing from your watchlist:\n")
	for _, m := range sortedMatches(s.Matches) {
		b.WriteString("• ")
		b.WriteString(matchLine(m))
		b.WriteString("\n")
	}
	msg.Text = strings.TrimRight(b.String(), "\n")
	return msg
}

// matchLine renders one match as "Wanted: Showing (95%, via Alt)".
func matchLine(m matching.MatchResult) string {
	line := m.Entry.Title
	if !strings.EqualFold(strings.TrimSpace(m.Entry.Title), strings.TrimSpace(m.Listing.Title)) {
		line += ": " + m.Listing.Title
	}
	detail := []string{formatScore(m.Score)}
	if m.MatchedTitle != "" && m.MatchedTitle != m.Entry.Title {
		detail = append(detail, "via "+m.MatchedTitle)
	}
	return line + " (" + strings.Join(detail, ", ") + ")"
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// sortedMatches orders exact matches first, then by descending score. The
// input order breaks ties.
func sortedMatches(matches []matching.MatchResult) []matching.MatchResult {
	out := make([]matching.MatchResult, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == matching.KindExact
		}
		return out[i].Score > out[j].Score
	})
	return out
}

func errorMessage(err error, label string) Message {
	var b strings.Builder
	b.WriteString("❌ Error")
	if label = strings.TrimSpace(label); label != "" {
		b.WriteString(" during ")
		b.WriteString(label)
	}
	b.WriteString(": ")
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	return Message{
		Title:    "Cinewatch - Error",
		Text:     b.String(),
		Tags:     []string{"cinewatch", "error", "warning"},
		Priority: "high",
	}
}

func testMessage() Message {
	return Message{
		Title:    "Cinewatch - Test",
		Text:     "🧪 Notification system test",
		Tags:     []string{"cinewatch", "test"},
		Priority: "low",
	}
}
