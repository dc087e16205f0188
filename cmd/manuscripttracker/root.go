package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/spf13/cobra"

	"ManuscriptTracker/internal/app"
	"ManuscriptTracker/internal/config"
	"ManuscriptTracker/internal/logging"
	"ManuscriptTracker/internal/telemetry"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:           "manuscripttracker",
	Short:         "Track manuscript status on Editorial Manager journals",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the yaml config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd, watchCmd, accountsCmd)
}

// loadConfig reads and validates the configuration selected by the flags.
func loadConfig() (config.Config, string, error) {
	cfg, path, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// bootstrap prepares logging, tracing and the application. The returned
// cleanup flushes spans and closes the log file.
func bootstrap(ctx context.Context) (*app.Application, *slog.Logger, func(), error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, logFile, err := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, nil, nil, err
	}
	if path != "" {
		logger.Debug("config loaded", "path", path)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry, logger.With("component", "telemetry"))
	if err != nil {
		closeQuietly(logFile)
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := shutdown(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
		closeQuietly(logFile)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return application, logger, cleanup, nil
}

// errPanic marks a failure that escaped every inner recovery boundary.
var errPanic = errors.New("unrecoverable failure")

// recoverFatal logs a panic with its stack and turns it into the command's
// error, so main exits non-zero after the log line is written.
func recoverFatal(logger *slog.Logger, err *error) {
	r := recover()
	if r == nil {
		return
	}
	logger.Error("unrecoverable failure", "panic", r, "stack", string(debug.Stack()))
	*err = fmt.Errorf("%w: %v", errPanic, r)
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
