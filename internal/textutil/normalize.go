package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Fold trims surrounding whitespace and applies Unicode case folding.
// A fresh Caser is built per call because Casers carry state.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// NormalizeTitle lower-cases s, drops punctuation and symbol runes, collapses
// whitespace runs to a single space and trims the result. Letters, digits and
// combining marks are kept, so accented titles keep their accents.
func NormalizeTitle(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// RemoveWords drops every whitespace-separated token of s found in words.
func RemoveWords(s string, words map[string]struct{}) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, field := range fields {
		if _, drop := words[field]; drop {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// KeywordSet returns the distinct tokens of s longer than minRunes runes.
func KeywordSet(s string, minRunes int) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) <= minRunes {
			continue
		}
		set[field] = struct{}{}
	}
	return set
}

// RuneLen reports the rune length of s after trimming whitespace.
func RuneLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
