// Package aliases resolves localized cinema release titles for watchlist
// entries using a Gemini model. Results are cached per title and language.
package aliases
