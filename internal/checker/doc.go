// Package checker runs one watchlist check: it loads the watchlist and the
// current cinema listings, optionally enriches watchlist entries with
// localized titles, selects the best listing per entry, and notifies about
// the result.
//
// The daemon and the CLI both drive a Checker; Build wires one from the
// configuration file.
package checker
