// Package matching reconciles watchlist titles with cinema listing titles.
//
// TitleMatcher scores a pair of titles in three ordered steps: a case-folded
// exact comparison, a substring containment check, and a fuzzy score taken as
// the maximum of a Ratcliff/Obershelp ratio, the same ratio with English and
// Italian articles removed, and a keyword overlap ratio. Selector applies a
// caller-supplied threshold and keeps the single best listing per watchlist
// entry.
//
// Everything here is pure: no logging, no I/O, and no shared mutable state, so
// matchers can be called from any number of goroutines.
package matching
