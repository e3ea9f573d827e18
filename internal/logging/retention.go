package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogTimeLayout is the UTC timestamp embedded in per-run log names.
const RunLogTimeLayout = "20060102T150405.000Z"

// RunLogName returns the file name of the log for a run started at t, for
// example "cinewatch-20250901T200000.000Z.log".
func RunLogName(prefix string, t time.Time) string {
	return prefix + "-" + t.UTC().Format(RunLogTimeLayout) + ".log"
}

// RunLogStarted parses the start time out of a name produced by RunLogName.
func RunLogStarted(prefix, name string) (time.Time, bool) {
	stamp, ok := strings.CutPrefix(name, prefix+"-")
	if !ok {
		return time.Time{}, false
	}
	stamp, ok = strings.CutSuffix(stamp, ".log")
	if !ok {
		return time.Time{}, false
	}
	started, err := time.Parse(RunLogTimeLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return started, true
}

// RunLogRetention describes the per-run logs kept in Dir.
type RunLogRetention struct {
	Dir    string
	Prefix string
	Days   int
	// Keep lists paths never removed, such as the log of the current run.
	Keep []string
}

// CleanupOldLogs removes per-run logs whose embedded start time is older than
// r.Days. Files that do not follow the run log naming are left alone, as is
// everything when Days is 0. It returns the number of files removed.
func CleanupOldLogs(logger *slog.Logger, r RunLogRetention, now time.Time) int {
	if r.Days <= 0 || strings.TrimSpace(r.Dir) == "" || r.Prefix == "" {
		return 0
	}
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return 0
	}

	keep := make(map[string]struct{}, len(r.Keep))
	for _, path := range r.Keep {
		keep[filepath.Clean(path)] = struct{}{}
	}
	cutoff := now.AddDate(0, 0, -r.Days)

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		started, ok := RunLogStarted(r.Prefix, entry.Name())
		if !ok || !started.Before(cutoff) {
			continue
		}
		path := filepath.Join(r.Dir, entry.Name())
		if _, skip := keep[filepath.Clean(path)]; skip {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("log_path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions on paths.log_dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned",
				String("log_path", path),
				Time("run_started", started),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	return removed
}
