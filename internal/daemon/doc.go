// Package daemon runs watchlist checks on a fixed schedule.
//
// A Daemon holds an flock on the state directory so only one scheduler runs
// per configuration, ticks every schedule.interval_minutes, and records the
// outcome of the latest pass for Status. Individual check steps live in the
// checker package; the daemon only owns startup, shutdown, and timing.
package daemon
