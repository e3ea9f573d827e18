package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cinewatch/internal/checker"
	"cinewatch/internal/config"
	"cinewatch/internal/daemon"
	"cinewatch/internal/logging"
	"cinewatch/internal/notifications"
)

const (
	logPointerName = "cinewatch.log"
	runLogPrefix   = "cinewatch"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the cinewatch scheduler and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	logPath := filepath.Join(cfg.Paths.LogDir, logging.RunLogName(runLogPrefix, started))

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logConfigSnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", logPointerName, err)
	}
	logging.CleanupOldLogs(logger, logging.RunLogRetention{
		Dir:    cfg.Paths.LogDir,
		Prefix: runLogPrefix,
		Days:   cfg.Logging.RetentionDays,
		Keep:   []string{logPath},
	}, started)
	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	chk, closeChecker, err := checker.Build(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("build checker", logging.Error(err))
		return err
	}
	defer closeChecker()

	d, err := daemon.New(cfg, chk, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "stop the other cinewatch daemon or remove a stale lock in state_dir"),
			logging.String(logging.FieldImpact, "no scheduled checks will run"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("cinewatch daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logPointerName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	senders := notifications.Senders(cfg)
	names := make([]string, 0, len(senders))
	for _, s := range senders {
		names = append(names, s.Name())
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("watchlist_provider", cfg.Watchlist.Provider),
		logging.Bool("letterboxd_user_present", strings.TrimSpace(cfg.Watchlist.Username) != ""),
		logging.String("listings_provider", cfg.Listings.Provider),
		logging.String("city", cfg.Listings.City),
		logging.Float64("threshold", cfg.Matching.Threshold),
		logging.Duration("interval", cfg.ScheduleInterval()),
		logging.String("notifiers", strings.Join(names, ",")),
		logging.Bool("cache_enabled", cfg.Cache.Enabled),
		logging.Bool("aliases_enabled", cfg.Aliases.Enabled),
		logging.Bool("gemini_key_present", strings.TrimSpace(cfg.Aliases.APIKey) != ""),
	)
}
