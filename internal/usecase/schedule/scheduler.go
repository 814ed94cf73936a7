// Package schedule runs named actions at fixed times of day with one-minute
// resolution. There is no catch-up: a minute missed while the process was
// down is skipped for that day.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
)

const clockLayout = "15:04"

// Action is one scheduled task.
type Action struct {
	Name string
	// At is the local "HH:MM" the action fires at.
	At string
	// Run executes the action. Errors are logged, never retried by the scheduler.
	Run func(ctx context.Context) error
}

// Scheduler polls the clock once a minute and fires each action at most once
// per matching minute.
type Scheduler struct {
	log     zerolog.Logger
	now     func() time.Time
	guard   domain.OnceGuard
	actions []Action

	lastFired map[string]string
	// dispatch runs a firing action; the default detaches it so a hung call
	// never delays the next tick. Tests swap in a synchronous variant.
	dispatch func(fn func())
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects the wall clock. Tests use a fake.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithOnceGuard adds a cross-restart guard so a restart within the scheduled
// minute cannot double-fire an action.
func WithOnceGuard(guard domain.OnceGuard) Option {
	return func(s *Scheduler) { s.guard = guard }
}

// NewScheduler creates a scheduler for the actions.
func NewScheduler(logger zerolog.Logger, actions []Action, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:       logger,
		now:       time.Now,
		actions:   actions,
		lastFired: make(map[string]string),
		dispatch:  func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls until the context is cancelled. An immediate first tick covers a
// start landing inside a scheduled minute.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick checks every action against the current minute and fires the matching
// ones. Actions run on their own goroutine so a hung call delays nothing.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	minute := now.Format(clockLayout)
	for name, last := range s.lastFired {
		if last != minute {
			delete(s.lastFired, name)
		}
	}
	for i := range s.actions {
		action := s.actions[i]
		if !shouldFire(minute, action.At, s.lastFired[action.Name]) {
			continue
		}
		s.lastFired[action.Name] = minute
		s.dispatch(func() { s.fire(ctx, action, now) })
	}
}

func (s *Scheduler) fire(ctx context.Context, action Action, now time.Time) {
	var ran bool
	run := func() error {
		ran = true
		s.log.Info().Str("action", action.Name).Msg("schedule: firing")
		if err := action.Run(ctx); err != nil {
			s.log.Error().Err(err).Str("action", action.Name).Msg("schedule: action failed")
			return err
		}
		return nil
	}
	if s.guard == nil {
		_ = run()
		return
	}
	key := fmt.Sprintf("schedule:%s:%s", action.Name, now.Format(domain.DateFormat))
	err := s.guard.Once(key, 24*time.Hour, run)
	if err != nil && !ran {
		// The guard store was unreachable before the action could start. The
		// guard is a restart fence, not a gatekeeper: fall through to the
		// in-process dedup and run anyway.
		s.log.Warn().Err(err).Str("action", action.Name).Msg("schedule: once guard unavailable, running unguarded")
		_ = run()
	}
}

// shouldFire reports whether an action configured for at should fire now,
// given the minute it last fired in. Repeated ticks inside one minute
// deduplicate; entries for minutes the clock has moved past are cleared by
// Tick, so the same minute next day fires again.
func shouldFire(now, at, lastFired string) bool {
	return now == at && now != lastFired
}
