// Package scheduler decides when update checks run.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/CovenantEyes/winsparkle/internal/checker"
	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/logger"
)

type Kind int

const (
	// Periodic loops until cancelled, checking whenever the interval elapsed.
	Periodic Kind = iota
	// OneShot runs a single manual check.
	OneShot
)

func (k Kind) String() string {
	if k == OneShot {
		return "one-shot"
	}
	return "periodic"
}

// RunFunc runs one session. (*checker.Session).Run satisfies it.
type RunFunc func(ctx context.Context, mode checker.Mode) (checker.Outcome, error)

// Prefs is what the periodic loop reads on every iteration.
type Prefs interface {
	CheckForUpdates(ctx context.Context) (bool, error)
	LastCheckTime(ctx context.Context) (time.Time, error)
	CheckInterval(ctx context.Context) (time.Duration, error)
}

// Scheduler is either Periodic or OneShot; see Kind.
type Scheduler struct {
	kind    Kind
	run     RunFunc
	prefs   Prefs
	quantum time.Duration
	now     func() time.Time
}

type Option func(*Scheduler)

// WithQuantum sets how long the periodic loop sleeps between iterations.
func WithQuantum(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.quantum = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPeriodic checks whenever CheckForUpdates is on and LastCheckTime plus
// CheckInterval has passed. Both are re-read every quantum so changes made
// while the loop runs take effect without a restart.
func NewPeriodic(run RunFunc, prefs Prefs, opts ...Option) *Scheduler {
	s := &Scheduler{
		kind:    Periodic,
		run:     run,
		prefs:   prefs,
		quantum: config.DefaultPollQuantum,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewOneShot runs exactly one Manual check.
func NewOneShot(run RunFunc) *Scheduler {
	return &Scheduler{kind: OneShot, run: run, now: time.Now}
}

func (s *Scheduler) Kind() Kind { return s.kind }

// Run blocks until the work is done. A periodic scheduler returns nil once
// ctx is cancelled and never returns a session error. A one-shot scheduler
// returns the session error as is.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.run == nil {
		return fmt.Errorf("%s scheduler has no session", s.kind)
	}
	switch s.kind {
	case OneShot:
		_, err := s.run(ctx, checker.Manual)
		return err
	default:
		if s.prefs == nil {
			return fmt.Errorf("periodic scheduler has no preferences store")
		}
		return s.loop(ctx)
	}
}

// Start runs Run on its own goroutine. The channel yields Run's result and
// is then closed.
func (s *Scheduler) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.Run(ctx)
	}()
	return done
}

func (s *Scheduler) loop(ctx context.Context) error {
	logger.Debug("Periodic update checks started (quantum %s)", s.quantum)
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.tick(ctx)

		timer := time.NewTimer(s.quantum)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Debug("Periodic update checks stopped")
			return nil
		case <-timer.C:
		}
	}
}

// tick runs at most one session. Nothing it does may end the loop.
func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogError("Update check panicked: %v", r)
		}
	}()

	due, err := s.due(ctx)
	if err != nil {
		logger.Warn("Cannot read update preferences: %v", err)
		return
	}
	if !due {
		return
	}

	out, err := s.run(ctx, checker.Periodic)
	if err != nil {
		logger.Warn("Periodic update check failed: %v", err)
		return
	}
	logger.Debug("Periodic update check: %s", out.Kind)
}

func (s *Scheduler) due(ctx context.Context) (bool, error) {
	on, err := s.prefs.CheckForUpdates(ctx)
	if err != nil || !on {
		return false, err
	}
	last, err := s.prefs.LastCheckTime(ctx)
	if err != nil {
		return false, err
	}
	interval, err := s.prefs.CheckInterval(ctx)
	if err != nil {
		return false, err
	}

	now := s.now()
	next := last.Add(interval)
	if now.Before(next) {
		logger.Debug("scheduler: skip (last=%s, next in %s)",
			last.Format(time.RFC3339), next.Sub(now).Truncate(time.Second))
		return false, nil
	}
	return true, nil
}
