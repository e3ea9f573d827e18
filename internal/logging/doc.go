// Package logging assembles structured slog loggers and formatting helpers used
// across cinewatch.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so provider and checker code can
// tag log lines with run IDs and source names. The console handler prints a
// one-line header followed by the most relevant fields; JSON output keeps every
// attribute.
package logging
