package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ManuscriptTracker/internal/ports"
)

var (
	// ErrInvalidInterval is returned when neither a positive interval nor a cron spec is set.
	ErrInvalidInterval = errors.New("schedule interval must be positive")
	// ErrInvalidSchedule wraps cron spec parse failures.
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)

// CronScheduler runs a job immediately and then on every tick of a cron
// schedule. A tick that fires while the previous pass is still running is
// skipped, so passes never overlap.
type CronScheduler struct {
	spec   string
	logger *slog.Logger

	mu    sync.Mutex
	cron  *cron.Cron
	first chan struct{}
	quit  chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from a standard cron expression or a
// descriptor such as "@daily" or "@every 6h".
func NewCronScheduler(spec string, logger *slog.Logger) *CronScheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CronScheduler{spec: spec, logger: logger}
}

// NewIntervalScheduler ticks every interval. cron resolves intervals to
// whole seconds with a one second minimum.
func NewIntervalScheduler(interval time.Duration, logger *slog.Logger) *CronScheduler {
	spec := ""
	if interval > 0 {
		spec = "@every " + interval.String()
	}
	return NewCronScheduler(spec, logger)
}

// Start begins ticking; calling it on a running scheduler is a no-op.
// Cancelling ctx stops further ticks.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if s.spec == "" {
		return ErrInvalidInterval
	}
	schedule, err := cron.ParseStandard(s.spec)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, s.spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	log := cronLogger{logger: s.logger}
	pass := cron.NewChain(cron.Recover(log), cron.SkipIfStillRunning(log)).
		Then(cron.FuncJob(func() { job(time.Now()) }))

	c := cron.New(cron.WithLogger(log))
	c.Schedule(schedule, pass)

	first := make(chan struct{})
	quit := make(chan struct{})
	s.cron, s.first, s.quit = c, first, quit

	go func() {
		defer close(first)
		pass.Run()
	}()
	c.Start()

	go func() {
		select {
		case <-ctx.Done():
			c.Stop()
		case <-quit:
		}
	}()

	s.logger.Debug("scheduler started", "schedule", s.spec)
	return nil
}

// Stop halts the schedule and waits for a running pass to return.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c, first, quit := s.cron, s.first, s.quit
	s.cron, s.first, s.quit = nil, nil, nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	close(quit)

	for _, done := range []<-chan struct{}{c.Stop().Done(), first} {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// cronLogger routes cron's own diagnostics into slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
