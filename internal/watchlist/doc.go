// Package watchlist loads the films a user wants to see, either by scraping
// a public Letterboxd watchlist or from a local TOML file.
package watchlist
