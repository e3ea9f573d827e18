package matching

import (
	"strings"

	"cinewatch/internal/textutil"
)

const (
	// ContainedScore applies when the first title is found inside the second.
	ContainedScore = 0.90
	// ContainsScore applies when the second title is found inside the first.
	ContainsScore = 0.85

	// DefaultThreshold is used when no threshold is configured.
	DefaultThreshold = 0.75

	keywordMinRunes = 2
	minTitleRunes   = 2
)

var articles = map[string]struct{}{
	"the": {}, "a": {}, "an": {},
	"il": {}, "la": {}, "lo": {}, "i": {}, "le": {}, "gli": {},
	"un": {}, "una": {}, "uno": {},
}

// Matcher scores how likely two titles denote the same film.
type Matcher interface {
	Score(a, b string) Score
}

// TitleMatcher is the default Matcher. The zero value is ready to use.
type TitleMatcher struct{}

// NewTitleMatcher returns the default title matcher.
func NewTitleMatcher() TitleMatcher {
	return TitleMatcher{}
}

// Score compares a (the watchlist side) against b (the listing side).
func (TitleMatcher) Score(a, b string) Score {
	fa, fb := textutil.Fold(a), textutil.Fold(b)
	if fa == fb {
		return Score{Value: 1.0, Kind: KindExact, Branch: BranchExact}
	}
	if fa != "" && fb != "" {
		switch {
		case strings.Contains(fb, fa):
			return Score{Value: ContainedScore, Kind: KindFuzzy, Branch: BranchContainment}
		case strings.Contains(fa, fb):
			return Score{Value: ContainsScore, Kind: KindFuzzy, Branch: BranchContainment}
		}
	}
	m := fuzzyMeasures(a, b)
	return Score{Value: m.max(), Kind: KindFuzzy, Branch: BranchFuzzy}
}

type measures struct {
	raw      float64
	stripped float64
	keywords float64
	normalA  string
	normalB  string
}

func (m measures) max() float64 {
	best := m.raw
	if m.stripped > best {
		best = m.stripped
	}
	if m.keywords > best {
		best = m.keywords
	}
	return best
}

func fuzzyMeasures(a, b string) measures {
	na, nb := textutil.NormalizeTitle(a), textutil.NormalizeTitle(b)
	return measures{
		raw:      ratio(na, nb),
		stripped: ratio(textutil.RemoveWords(na, articles), textutil.RemoveWords(nb, articles)),
		keywords: keywordOverlap(na, nb),
		normalA:  na,
		normalB:  nb,
	}
}

// ratio is SequenceRatio taken in both directions, since block matching
// depends on argument order. Empty input scores zero, so titles made only of
// punctuation or articles never look identical.
func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return max(textutil.SequenceRatio(a, b), textutil.SequenceRatio(b, a))
}

func keywordOverlap(a, b string) float64 {
	sa := textutil.KeywordSet(a, keywordMinRunes)
	sb := textutil.KeywordSet(b, keywordMinRunes)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	shared := 0
	for token := range sa {
		if _, ok := sb[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(sa), len(sb)))
}

// Usable reports whether a title is long enough to be matched at all.
func Usable(title string) bool {
	return textutil.RuneLen(title) > minTitleRunes
}
