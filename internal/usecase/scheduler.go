package usecase

import (
	"context"
	"time"

	"ManuscriptTracker/internal/domain"
	"ManuscriptTracker/internal/ports"
)

// Scheduler wires the interval driver with the tracker.
type Scheduler struct {
	driver   ports.Scheduler
	tracker  *Tracker
	accounts []domain.Account
	onReport func(domain.RunReport)
}

// NewScheduler returns a helper to start/stop recurring passes. onReport may be nil.
func NewScheduler(driver ports.Scheduler, tracker *Tracker, accounts []domain.Account, onReport func(domain.RunReport)) *Scheduler {
	return &Scheduler{driver: driver, tracker: tracker, accounts: accounts, onReport: onReport}
}

// Start registers the tracking pass with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.tracker == nil {
		return nil
	}

	job := func(time.Time) {
		report := s.tracker.Run(ctx, s.accounts)
		if s.onReport != nil {
			s.onReport(report)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
