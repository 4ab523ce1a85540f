// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionSweeper closes sessions idle for longer than a cutoff.
type SessionSweeper interface {
	Sweep(idle time.Duration) int
}

// Scheduler owns the cron runner for background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler returns a stopped Scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		logger: logger,
	}
}

// AddSessionSweep runs sessions.Sweep(idle) on spec, a standard cron
// expression or a descriptor such as "@every 5m".
func (s *Scheduler) AddSessionSweep(spec string, sessions SessionSweeper, idle time.Duration) error {
	if _, err := s.cron.AddFunc(spec, SweepSessions(sessions, idle, s.logger)); err != nil {
		return fmt.Errorf("failed to schedule session sweep %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// SweepSessions returns the job body: one sweep, logged when it closed anything.
func SweepSessions(sessions SessionSweeper, idle time.Duration, logger *slog.Logger) func() {
	return func() {
		if n := sessions.Sweep(idle); n > 0 {
			logger.Info("closed idle sessions", "count", n, "idle", idle.String())
		}
	}
}
