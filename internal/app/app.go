package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ManuscriptTracker/internal/config"
	"ManuscriptTracker/internal/domain"
	"ManuscriptTracker/internal/infrastructure/email"
	"ManuscriptTracker/internal/infrastructure/portal"
	"ManuscriptTracker/internal/infrastructure/scheduler"
	"ManuscriptTracker/internal/infrastructure/serverchan"
	"ManuscriptTracker/internal/infrastructure/telegram"
	"ManuscriptTracker/internal/logging"
	"ManuscriptTracker/internal/notify"
	"ManuscriptTracker/internal/ports"
	"ManuscriptTracker/internal/usecase"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	tracker *usecase.Tracker
}

// New builds the portal client, the notification channels and the tracker.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client, err := portal.NewClient(PortalOptions(cfg.Portal), baseLogger.With("component", "portal"))
	if err != nil {
		return nil, fmt.Errorf("build portal client: %w", err)
	}

	notifiers := buildNotifiers(cfg.Notifications, baseLogger.With("component", "notify"))

	tracker := usecase.NewTracker(usecase.TrackerDeps{
		Sessions:   client,
		Discoverer: client,
		Extractor:  client,
		Notifiers:  notifiers,
		Logger:     baseLogger.With("component", "tracker"),
	})

	return &Application{cfg: cfg, logger: baseLogger, tracker: tracker}, nil
}

// PortalOptions maps the yaml portal section onto client options.
func PortalOptions(c config.PortalConfig) portal.Options {
	return portal.Options{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		Retry:             portal.RetryPolicy{Attempts: c.Retry.Attempts, Delay: c.Retry.Delay},
		Headers:           c.Headers,
		SuccessMarker:     c.SuccessMarker,
		PageSize:          c.PageSize,
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  c.CloudflareBypass,
	}
}

// buildNotifiers registers every channel that has credentials and resolves
// the configured selection. Missing channels are logged and skipped.
func buildNotifiers(c config.NotificationConfig, logger *slog.Logger) []ports.Notifier {
	registry := notify.NewRegistry()

	if serverchan.Configured(c.ServerChan.SendKey) {
		registry.Register(serverchan.NewNotifier(c.ServerChan.SendKey, c.ServerChan.Endpoint))
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID != "" {
		registry.Register(telegram.NewNotifier(c.Telegram.BotToken, c.Telegram.ChatID, c.Telegram.APIBase))
	}
	if c.Email.Host != "" {
		registry.Register(email.NewNotifier(email.Config{
			Host:     c.Email.Host,
			Port:     c.Email.Port,
			Username: c.Email.Username,
			Password: c.Email.Password,
			From:     c.Email.From,
			To:       c.Email.To,
		}))
	}

	notifiers, err := registry.ResolveAll(c.Channels)
	if err != nil {
		logger.Warn("notification channel not configured, skipping", "error", err, "available", registry.Names())
	}
	return notifiers
}

// Accounts returns the configured accounts in run order.
func (a *Application) Accounts() []domain.Account {
	return a.cfg.Accounts
}

// Run performs a single tracking pass.
func (a *Application) Run(ctx context.Context) domain.RunReport {
	return a.tracker.Run(ctx, a.cfg.Accounts)
}

// Watch repeats passes every schedule interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, onReport func(domain.RunReport)) error {
	sched := usecase.NewScheduler(a.scheduleDriver(), a.tracker, a.cfg.Accounts, onReport)

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching accounts", "schedule", a.scheduleDescription(), "accounts", len(a.cfg.Accounts))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("watch stopped")
	return nil
}

func (a *Application) scheduleDriver() ports.Scheduler {
	logger := a.logger.With("component", "scheduler")
	if a.cfg.Schedule.Cron != "" {
		return scheduler.NewCronScheduler(a.cfg.Schedule.Cron, logger)
	}
	return scheduler.NewIntervalScheduler(a.cfg.Schedule.Interval, logger)
}

func (a *Application) scheduleDescription() string {
	if a.cfg.Schedule.Cron != "" {
		return a.cfg.Schedule.Cron
	}
	return "every " + a.cfg.Schedule.Interval.String()
}
