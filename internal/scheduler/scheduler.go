// Package scheduler drives the expiration sweep on a fixed wall-clock
// cadence and exposes a manual trigger for the API layer.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultInitialDelay postpones the first sweep after startup so
	// the rest of the system has settled before any work happens.
	DefaultInitialDelay = 1 * time.Minute

	// DefaultInterval is the cadence between sweeps.
	DefaultInterval = 24 * time.Hour
)

// ErrAlreadyRunning is returned by Start when the scheduler is running.
var ErrAlreadyRunning = errors.New("scheduler already running")

// SweepRunner is the subset of the alert engine the scheduler drives.
type SweepRunner interface {
	CheckExpiring(ctx context.Context) error
	CountActiveAlerts(ctx context.Context) (int, error)
}

// Scheduler owns its timer state explicitly: construct one, pass it to
// the process bootstrap, and call Start/Stop on it. There is no
// package-level singleton.
type Scheduler struct {
	engine       SweepRunner
	initialDelay time.Duration
	interval     time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Option is a functional option for configuring the Scheduler.
type Option func(*Scheduler)

// WithInitialDelay overrides the delay before the first sweep.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		s.initialDelay = d
	}
}

// WithInterval overrides the cadence between sweeps.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// New creates a new scheduler driving the given engine.
func New(engine SweepRunner, opts ...Option) *Scheduler {
	s := &Scheduler{
		engine:       engine,
		initialDelay: DefaultInitialDelay,
		interval:     DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start transitions the scheduler to Running and schedules the first
// sweep after the initial delay, then one sweep per interval. Calling
// Start while already Running returns ErrAlreadyRunning instead of
// stacking a second timer.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	slog.Info("Starting alert scheduler",
		"initial_delay", s.initialDelay,
		"interval", s.interval,
	)

	s.wg.Add(1)
	go s.run(ctx, stopCh)
	return nil
}

// Stop cancels future sweeps. It does not cancel a sweep already in
// flight; it returns once the scheduler goroutine has exited. Calling
// Stop while already Stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Alert scheduler stopped")
}

// run waits out the initial delay, then sweeps once per interval until
// stopped or the context is cancelled.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-stopCh:
		return
	case <-timer.C:
		s.runSweep(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep executes one sweep and logs a summary. A failed sweep is
// logged and swallowed: the ticker must keep firing on schedule
// regardless of any single sweep's outcome.
func (s *Scheduler) runSweep(ctx context.Context) {
	before, beforeErr := s.engine.CountActiveAlerts(ctx)

	if err := s.engine.CheckExpiring(ctx); err != nil {
		slog.Error("Expiration sweep failed", "error", err)
	}

	if beforeErr != nil {
		slog.Warn("Could not count active alerts before sweep", "error", beforeErr)
		return
	}
	after, err := s.engine.CountActiveAlerts(ctx)
	if err != nil {
		slog.Warn("Could not count active alerts after sweep", "error", err)
		return
	}

	slog.Info("Expiration sweep completed", "alerts_created", after-before)
}

// ManualCheckResult summarizes an on-demand sweep.
type ManualCheckResult struct {
	Message       string `json:"message"`
	AlertsCreated int    `json:"alerts_created"`
}

// RunManualCheck executes a sweep synchronously, bypassing the timer,
// and reports the number of alerts created by diffing the active-alert
// count around the sweep.
func (s *Scheduler) RunManualCheck(ctx context.Context) (*ManualCheckResult, error) {
	before, err := s.engine.CountActiveAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active alerts: %w", err)
	}

	if err := s.engine.CheckExpiring(ctx); err != nil {
		// A category-level failure still completes the rest of the
		// sweep; report what was created rather than failing the call.
		slog.Error("Manual expiration sweep reported errors", "error", err)
	}

	after, err := s.engine.CountActiveAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active alerts: %w", err)
	}

	created := after - before
	return &ManualCheckResult{
		Message:       fmt.Sprintf("Verificação concluída: %d alerta(s) criado(s)", created),
		AlertsCreated: created,
	}, nil
}
