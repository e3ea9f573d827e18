// Package textutil provides the title normalization and string similarity
// primitives used by matching.
//
// NormalizeTitle folds case, strips punctuation, and collapses whitespace.
// SequenceRatio computes the longest-common-block similarity ratio over runes;
// it is the raw fuzzy measure behind every non-exact title score.
package textutil
