// ABOUTME: Tests for the periodic scheduler
// ABOUTME: Verifies start and stop, double start rejection, and cycle bookkeeping
package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/pricewatch/internal/logging"
)

type countingRunner struct {
	calls atomic.Int32
	fail  bool
}

func (r *countingRunner) CheckAll(ctx context.Context) (*CycleReport, error) {
	r.calls.Add(1)
	if r.fail {
		return nil, errors.New("list failed")
	}
	return &CycleReport{Checked: int(r.calls.Load())}, nil
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

func TestScheduler_StartStop(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, 10*time.Millisecond, true, logging.Discard())
	ctx := context.Background()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.Running() {
		t.Error("Running() = false after Start")
	}
	if err := s.Start(ctx); !errors.Is(err, ErrSchedulerRunning) {
		t.Errorf("second Start() error = %v, want ErrSchedulerRunning", err)
	}

	waitFor(t, func() bool { return s.Cycles() >= 3 })
	if s.LastReport() == nil {
		t.Error("LastReport() = nil after cycles")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.Running() {
		t.Error("Running() = true after Stop")
	}

	after := runner.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if runner.calls.Load() != after {
		t.Error("cycles ran after Stop")
	}

	// Stopping twice is harmless and the scheduler can start again.
	if err := s.Stop(stopCtx); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Errorf("restart error = %v", err)
	}
	_ = s.Stop(stopCtx)
}

func TestScheduler_RunOnStart(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, true, logging.Discard())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	waitFor(t, func() bool { return s.Cycles() == 1 })
}

func TestScheduler_FailedCycleNotCounted(t *testing.T) {
	runner := &countingRunner{fail: true}
	s := NewScheduler(runner, 5*time.Millisecond, false, logging.Discard())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, func() bool { return runner.calls.Load() >= 2 })
	_ = s.Stop(context.Background())

	if s.Cycles() != 0 || s.LastReport() != nil {
		t.Errorf("failed cycles recorded: cycles=%d", s.Cycles())
	}
}

func TestScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&countingRunner{}, 0, false, logging.Discard())
	if s.interval != 6*time.Hour {
		t.Errorf("interval = %v, want 6h", s.interval)
	}
}
