// Command cinewatch checks a Letterboxd watchlist against the films showing
// in a city's cinemas and notifies when something on the list is screening.
//
// Run `cinewatch check` for a single pass or `cinewatch daemon` to check on a
// schedule. `cinewatch match` scores two titles without loading any
// configuration, which is handy when tuning matching.threshold.
package main
