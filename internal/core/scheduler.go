// ABOUTME: Scheduler runs price check cycles on a fixed interval
// ABOUTME: One owned instance per process; cycles never overlap and late ticks are dropped
package core

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CycleRunner runs one full check cycle
type CycleRunner interface {
	CheckAll(ctx context.Context) (*CycleReport, error)
}

// Scheduler periodically invokes a CycleRunner
type Scheduler struct {
	runner     CycleRunner
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	last    *CycleReport
	cycles  int
}

// NewScheduler creates a stopped scheduler
func NewScheduler(runner CycleRunner, interval time.Duration, runOnStart bool, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Start launches the timer loop. It returns ErrSchedulerRunning if the
// scheduler is already started.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(loopCtx, s.done)

	s.logger.Info("scheduler started", "interval", s.interval, "run_on_start", s.runOnStart)
	return nil
}

// Stop cancels the loop and any in-flight cycle, then waits for the loop
// goroutine to exit or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastReport returns the most recent cycle report, or nil
func (s *Scheduler) LastReport() *CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Cycles returns how many cycles have completed
func (s *Scheduler) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.runOnStart {
		s.runCycle(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
			// Drop a tick that fired while the cycle was running.
			select {
			case <-ticker.C:
				s.logger.Debug("dropped overlapping tick")
			default:
			}
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := s.runner.CheckAll(ctx)
	if err != nil {
		s.logger.Error("price check cycle failed", "error", err)
		return
	}

	s.mu.Lock()
	s.last = report
	s.cycles++
	s.mu.Unlock()
}
