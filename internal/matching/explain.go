package matching

import "github.com/antzucaro/matchr"

// Breakdown exposes the intermediate values behind a score. JaroWinkler is
// informational only and never feeds into Score.
type Breakdown struct {
	Score           Score   `json:"score"`
	NormalizedA     string  `json:"normalized_a"`
	NormalizedB     string  `json:"normalized_b"`
	Raw             float64 `json:"raw"`
	ArticleStripped float64 `json:"article_stripped"`
	KeywordOverlap  float64 `json:"keyword_overlap"`
	JaroWinkler     float64 `json:"jaro_winkler"`
}

// Explain scores a against b and reports every fuzzy measure, even when the
// exact or containment branch decided the score.
func Explain(a, b string) Breakdown {
	m := fuzzyMeasures(a, b)
	return Breakdown{
		Score:           TitleMatcher{}.Score(a, b),
		NormalizedA:     m.normalA,
		NormalizedB:     m.normalB,
		Raw:             m.raw,
		ArticleStripped: m.stripped,
		KeywordOverlap:  m.keywords,
		JaroWinkler:     matchr.JaroWinkler(m.normalA, m.normalB, false),
	}
}
