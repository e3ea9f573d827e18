// Package daemonrun hosts the foreground daemon process: signal handling,
// per-run log files with a stable cinewatch.log pointer, log retention, the
// PID file, and the scheduler lifecycle.
package daemonrun
