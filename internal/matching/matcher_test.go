package matching_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"cinewatch/internal/matching"
)

func TestScoreExactIsReflexive(t *testing.T) {
	m := matching.NewTitleMatcher()
	for _, title := range []string{"Inception", "La La Land", "ab", "Il Gattopardo", "Spider-Man: No Way Home"} {
		got := m.Score(title, title)
		if got.Value != 1.0 {
			t.Fatalf("Score(%q, %q) = %v, want 1.0", title, title, got.Value)
		}
		if got.Kind != matching.KindExact {
			t.Fatalf("Score(%q, %q) kind = %s, want exact", title, title, got.Kind)
		}
	}
}

func TestScoreIgnoresCaseAndSurroundingWhitespace(t *testing.T) {
	got := matching.NewTitleMatcher().Score("inception", "  Inception  ")
	if got.Value != 1.0 || got.Kind != matching.KindExact {
		t.Fatalf("unexpected score %+v", got)
	}
}

func TestScoreLaLaLandExact(t *testing.T) {
	got := matching.NewTitleMatcher().Score("La La Land", "La La Land")
	if got.Value != 1.0 || got.Kind != matching.KindExact || got.Branch != matching.BranchExact {
		t.Fatalf("unexpected score %+v", got)
	}
}

func TestScorePunctuationInsensitive(t *testing.T) {
	got := matching.NewTitleMatcher().Score("Spider-Man: No Way Home", "Spider Man No Way Home")
	if got.Value <= 0.9 {
		t.Fatalf("expected score above 0.9, got %v", got.Value)
	}
	if got.Branch != matching.BranchFuzzy {
		t.Fatalf("expected fuzzy branch, got %s", got.Branch)
	}
}

func TestScoreContainment(t *testing.T) {
	m := matching.NewTitleMatcher()
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"listing adds article", "Batman", "The Batman", matching.ContainedScore},
		{"watchlist adds article", "The Batman", "Batman", matching.ContainsScore},
		{"listing adds subtitle", "Dune", "Dune Part Two", matching.ContainedScore},
		{"watchlist adds subtitle", "Dune Part Two", "Dune", matching.ContainsScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Score(tt.a, tt.b)
			if got.Value != tt.want {
				t.Fatalf("Score(%q, %q) = %v, want %v", tt.a, tt.b, got.Value, tt.want)
			}
			if got.Branch != matching.BranchContainment || got.Kind != matching.KindFuzzy {
				t.Fatalf("unexpected branch/kind %s/%s", got.Branch, got.Kind)
			}
		})
	}
}

func TestScoreContainmentIsAsymmetric(t *testing.T) {
	m := matching.NewTitleMatcher()
	forward := m.Score("Dune", "Dune Part Two").Value
	reverse := m.Score("Dune Part Two", "Dune").Value
	if forward == reverse {
		t.Fatalf("expected asymmetric containment scores, both %v", forward)
	}
	batman := m.Score("The Batman", "Batman").Value
	if batman < 0.85 || batman > 0.90 {
		t.Fatalf("The Batman vs Batman = %v, want within [0.85, 0.90]", batman)
	}
	if batman <= matching.DefaultThreshold {
		t.Fatalf("The Batman vs Batman = %v should clear the default threshold", batman)
	}
}

func TestScoreTypoIsFuzzyButNotExact(t *testing.T) {
	got := matching.NewTitleMatcher().Score("Oppenheimer", "Openheimer")
	if got.Value <= 0.85 || got.Value >= 1.0 {
		t.Fatalf("Oppenheimer vs Openheimer = %v, want within (0.85, 1.0)", got.Value)
	}
	if got.Kind != matching.KindFuzzy {
		t.Fatalf("expected fuzzy kind, got %s", got.Kind)
	}
}

func TestScoreFuzzyBranchIsSymmetric(t *testing.T) {
	m := matching.NewTitleMatcher()
	tests := []struct {
		a, b string
		want float64
	}{
		{"The Brutalist", "The Bruatlsit", 11.0 / 13.0},
		{"Parthenope", "Patheneoe", 16.0 / 19.0},
		{"Nosferatu", "Nosafrtu", 14.0 / 17.0},
		{"Oppenheimer", "Openheimer", 20.0 / 21.0},
		{"Roses", "Oppenheimer", 0.25},
		{"Spider-Man: No Way Home", "Spider Man No Way Home", 0},
		{"Il Buono, il Brutto, il Cattivo", "Il buono il brutto e il cattivo", 0},
		{"Warfare", "Roses", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			ab := m.Score(tt.a, tt.b)
			ba := m.Score(tt.b, tt.a)
			if ab.Branch != matching.BranchFuzzy || ba.Branch != matching.BranchFuzzy {
				t.Fatalf("expected fuzzy branch both ways, got %s/%s", ab.Branch, ba.Branch)
			}
			if ab.Value != ba.Value {
				t.Fatalf("not symmetric: %v != %v", ab.Value, ba.Value)
			}
			if tt.want != 0 && math.Abs(ab.Value-tt.want) > 1e-12 {
				t.Fatalf("score = %v, want %v", ab.Value, tt.want)
			}
		})
	}
}

func TestScoreSymmetricAcrossGeneratedTypos(t *testing.T) {
	m := matching.NewTitleMatcher()
	rng := rand.New(rand.NewPCG(7, 11))
	base := []string{"The Brutalist", "Parthenope", "Nosferatu", "Anora", "Conclave", "Vermiglio", "Emilia Perez", "Flow", "La Grazia"}
	for _, title := range base {
		for i := 0; i < 50; i++ {
			typo := []rune(title)
			for j := 0; j < 2; j++ {
				k := rng.IntN(len(typo) - 1)
				typo[k], typo[k+1] = typo[k+1], typo[k]
			}
			a, b := title, string(typo)
			ab, ba := m.Score(a, b), m.Score(b, a)
			if ab.Branch != matching.BranchFuzzy {
				continue
			}
			if ab.Value != ba.Value {
				t.Fatalf("Score(%q, %q) = %v but reversed = %v", a, b, ab.Value, ba.Value)
			}
		}
	}
}

func TestScoreArticleStrippingRescuesReorderedArticle(t *testing.T) {
	got := matching.NewTitleMatcher().Score("The Godfather", "Godfather, A")
	if got.Value != 1.0 {
		t.Fatalf("expected article-stripped similarity of 1.0, got %v", got.Value)
	}
	if got.Kind != matching.KindFuzzy {
		t.Fatalf("article-stripped match must stay fuzzy, got %s", got.Kind)
	}
}

func TestScoreNeverTreatsEmptyAsContained(t *testing.T) {
	m := matching.NewTitleMatcher()
	if got := m.Score("", "Warfare"); got.Value != 0 {
		t.Fatalf("empty title scored %v", got.Value)
	}
	if got := m.Score("!!!", "???"); got.Value != 0 {
		t.Fatalf("punctuation-only titles scored %v", got.Value)
	}
	if b := matching.Explain("La", "Il"); b.ArticleStripped != 0 {
		t.Fatalf("article-only titles should not look identical once stripped, got %v", b.ArticleStripped)
	}
}

func TestExplainKeywordOverlapCanBeZero(t *testing.T) {
	b := matching.Explain("Oppenheimer", "Openheimer")
	if b.KeywordOverlap != 0 {
		t.Fatalf("expected zero keyword overlap, got %v", b.KeywordOverlap)
	}
	if b.Score.Value <= matching.DefaultThreshold {
		t.Fatalf("expected raw similarity to carry the score, got %v", b.Score.Value)
	}
	if b.Score.Value != b.Raw {
		t.Fatalf("score %v should equal raw ratio %v", b.Score.Value, b.Raw)
	}
	if b.JaroWinkler <= 0 || b.JaroWinkler > 1 {
		t.Fatalf("jaro-winkler out of range: %v", b.JaroWinkler)
	}
}

func TestExplainKeywordOverlap(t *testing.T) {
	b := matching.Explain("Mission Impossible Dead Reckoning", "Dead Reckoning")
	if b.Score.Branch != matching.BranchContainment {
		t.Fatalf("expected containment branch, got %s", b.Score.Branch)
	}
	// tokens {mission, impossible, dead, reckoning} vs {dead, reckoning}
	if b.KeywordOverlap != 0.5 {
		t.Fatalf("keyword overlap = %v, want 0.5", b.KeywordOverlap)
	}
	if b.NormalizedB != "dead reckoning" {
		t.Fatalf("unexpected normalized form %q", b.NormalizedB)
	}
}
