package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"cinewatch/internal/checker"
	"cinewatch/internal/config"
	"cinewatch/internal/logging"
)

// Runner performs one check pass.
type Runner interface {
	Run(ctx context.Context) (checker.Report, error)
}

// Daemon runs checks on a schedule and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	runner   Runner
	logger   *slog.Logger
	interval time.Duration

	lockPath string
	lock     *flock.Flock

	// lifeMu guards ctx, cancel and done across Start and Stop.
	lifeMu  sync.Mutex
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	// runMu serializes check passes; scheduled and manual runs never overlap.
	runMu sync.Mutex

	mu         sync.Mutex
	lastRun    time.Time
	lastErr    error
	lastCount  int
	lastRunID  string
	nextRun    time.Time
	totalRuns  int
	failedRuns int
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool      `json:"running"`
	LockFilePath   string    `json:"lock_file_path"`
	Interval       string    `json:"interval"`
	LastRun        time.Time `json:"last_run,omitempty"`
	LastRunID      string    `json:"last_run_id,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	LastMatchCount int       `json:"last_match_count"`
	NextRun        time.Time `json:"next_run,omitempty"`
	TotalRuns      int       `json:"total_runs"`
	FailedRuns     int       `json:"failed_runs"`
}

// New constructs a daemon around runner.
func New(cfg *config.Config, runner Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	interval := cfg.ScheduleInterval()
	if interval <= 0 {
		return nil, fmt.Errorf("schedule interval must be positive, got %s", interval)
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		interval: interval,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the scheduler loop.
func (d *Daemon) Start(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	d.lifeMu.Lock()
	defer d.lifeMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		d.running.Store(false)
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		d.running.Store(false)
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		d.running.Store(false)
		return errors.New("another cinewatch daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})

	d.logger.Info("cinewatch daemon started",
		logging.String("lock", d.lockPath),
		logging.Duration("interval", d.interval),
		logging.Bool("run_on_start", d.cfg.Schedule.RunOnStart),
	)
	go d.loop(d.ctx, d.done)
	return nil
}

func (d *Daemon) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if d.cfg.Schedule.RunOnStart {
		d.runOnce(ctx)
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	d.setNextRun(time.Now().Add(d.interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx)
			d.setNextRun(time.Now().Add(d.interval))
		}
	}
}

func (d *Daemon) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := d.RunNow(ctx); err != nil && ctx.Err() == nil {
		// The checker already logged and notified; keep the schedule alive.
		d.logger.Debug("scheduled check failed", logging.Error(err))
	}
}

// RunNow performs a check immediately and records its outcome.
func (d *Daemon) RunNow(ctx context.Context) (checker.Report, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	report, err := d.runner.Run(ctx)

	d.mu.Lock()
	d.lastRun = time.Now()
	d.lastErr = err
	d.lastRunID = report.RunID
	d.totalRuns++
	if err != nil {
		d.failedRuns++
	} else {
		d.lastCount = len(report.Matches)
	}
	d.mu.Unlock()
	return report, err
}

func (d *Daemon) setNextRun(t time.Time) {
	d.mu.Lock()
	d.nextRun = t
	d.mu.Unlock()
}

// Stop halts the scheduler and releases the daemon lock. An in-flight check
// is cancelled and awaited.
func (d *Daemon) Stop() {
	d.lifeMu.Lock()
	defer d.lifeMu.Unlock()
	if !d.running.Load() || d.done == nil {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
		d.done = nil
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String("lock", d.lockPath),
		)
	}
	d.ctx = nil
	d.setNextRun(time.Time{})
	d.running.Store(false)
	d.logger.Info("cinewatch daemon stopped")
}

// Close stops the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := Status{
		Running:        d.running.Load(),
		LockFilePath:   d.lockPath,
		Interval:       d.interval.String(),
		LastRun:        d.lastRun,
		LastRunID:      d.lastRunID,
		LastMatchCount: d.lastCount,
		NextRun:        d.nextRun,
		TotalRuns:      d.totalRuns,
		FailedRuns:     d.failedRuns,
	}
	if d.lastErr != nil {
		status.LastError = d.lastErr.Error()
	}
	return status
}
