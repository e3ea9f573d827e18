// Package logs reads the daemon's log files for the CLI.
//
// Last returns the trailing lines of a file with bounded memory, and Follow
// polls for appended lines, restarting when the cinewatch.log pointer moves
// to a new run log. Both accept a Filter so callers can narrow output to a
// run ID or an event.
package logs
