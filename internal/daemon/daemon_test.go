package daemon_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cinewatch/internal/checker"
	"cinewatch/internal/daemon"
	"cinewatch/internal/logging"
	"cinewatch/internal/matching"
	"cinewatch/internal/testsupport"
)

type fakeRunner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRunner) Run(ctx context.Context) (checker.Report, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return checker.Report{RunID: "failed"}, f.err
	}
	return checker.Report{
		RunID:   "run",
		Matches: make([]matching.MatchResult, int(n)),
	}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Schedule.RunOnStart = false
	d, err := daemon.New(cfg, &fakeRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected lock path %q", status.LockFilePath)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status()
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if !status.NextRun.IsZero() {
		t.Fatalf("stopped daemon should have no next run, got %v", status.NextRun)
	}
}

func TestDaemonConcurrentStartClaimsOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Schedule.RunOnStart = false
	d, err := daemon.New(cfg, &fakeRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	var (
		wg      sync.WaitGroup
		started atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Start(context.Background()) == nil {
				started.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := started.Load(); got != 1 {
		t.Fatalf("expected exactly one successful Start, got %d", got)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
}

func TestDaemonLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := daemon.New(cfg, &fakeRunner{}, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	second, err := daemon.New(cfg, &fakeRunner{}, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		first.Close()
		second.Close()
	})

	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected second instance to be refused")
	}
	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("second Start after release: %v", err)
	}
}

func TestDaemonRunsOnStartAndOnSchedule(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Schedule.RunOnStart = true
	runner := &fakeRunner{}
	d, err := daemon.New(cfg, runner, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	d.SetInterval(20 * time.Millisecond)
	t.Cleanup(func() {
		d.Close()
	})

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, func() bool { return runner.calls.Load() >= 3 })
	d.Stop()

	status := d.Status()
	if status.TotalRuns < 3 || status.FailedRuns != 0 {
		t.Fatalf("unexpected run counters %+v", status)
	}
	if status.LastRun.IsZero() || status.LastRunID != "run" || status.LastError != "" {
		t.Fatalf("unexpected last run %+v", status)
	}
	if status.LastMatchCount != status.TotalRuns {
		t.Fatalf("last match count %d, want %d", status.LastMatchCount, status.TotalRuns)
	}
}

func TestDaemonRunNowRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := &fakeRunner{err: errors.New("listings unavailable")}
	d, err := daemon.New(cfg, runner, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	if _, err := d.RunNow(context.Background()); err == nil {
		t.Fatal("expected RunNow to return the runner error")
	}
	status := d.Status()
	if status.Running {
		t.Fatal("RunNow must not start the scheduler")
	}
	if status.LastError != "listings unavailable" || status.FailedRuns != 1 || status.TotalRuns != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestNewRejectsMissingRunner(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemon.New(cfg, nil, nil); err == nil {
		t.Fatal("expected error without runner")
	}
	cfg.Schedule.IntervalMinutes = 0
	if _, err := daemon.New(cfg, &fakeRunner{}, nil); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
