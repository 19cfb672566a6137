package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// State of the daily scheduler.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Runner executes the pipeline.
type Runner interface {
	Run(ctx context.Context, trigger Trigger) (Report, error)
}

// ScheduleConfig describes the daily trigger.
type ScheduleConfig struct {
	Trigger       domain.TimeOfDay
	Location      *time.Location
	CheckInterval time.Duration
}

// Scheduler fires the pipeline once per local calendar day at the trigger time.
type Scheduler struct {
	mu        sync.Mutex
	driver    ports.Ticker
	runner    Runner
	trigger   domain.TimeOfDay
	location  *time.Location
	window    time.Duration
	lastFired string
	state     State
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop the daily job.
func NewScheduler(driver ports.Ticker, runner Runner, cfg ScheduleConfig, log *slog.Logger) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	window := cfg.CheckInterval
	if window < time.Minute {
		window = time.Minute
	}
	return &Scheduler{
		driver:   driver,
		runner:   runner,
		trigger:  cfg.Trigger,
		location: loc,
		window:   window,
		logger:   log,
	}
}

// Due reports whether a check at now should fire.
func (s *Scheduler) Due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due(now)
}

func (s *Scheduler) due(now time.Time) bool {
	local := now.In(s.location)
	start := s.trigger.On(local)
	if local.Before(start) || !local.Before(start.Add(s.window)) {
		return false
	}
	return s.lastFired != local.Format(time.DateOnly)
}

// Tick runs the pipeline synchronously when due. The day is claimed before
// the run starts, so a failed run is not repeated the same day.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) bool {
	s.mu.Lock()
	if s.state == StateRunning || !s.due(now) {
		s.mu.Unlock()
		return false
	}
	s.lastFired = now.In(s.location).Format(time.DateOnly)
	s.state = StateRunning
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	s.info("daily digest due", "local_time", now.In(s.location).Format(time.DateTime))
	if _, err := s.runner.Run(ctx, TriggerScheduled); err != nil {
		s.logError("scheduled digest failed", "error", err)
	}
	return true
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start registers the check with the tick driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}
	return s.driver.Start(ctx, func(t time.Time) {
		s.Tick(ctx, t)
	})
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}

func (s *Scheduler) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) logError(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
