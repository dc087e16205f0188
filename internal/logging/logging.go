package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DefaultFile is where run logs are appended when no path is configured.
const DefaultFile = "em_tracker.log"

// New creates a console slog.Logger with provided level string.
func New(level string) *slog.Logger {
	return slog.New(NewRedactingHandler(newTextHandler(os.Stdout, level)))
}

// NewWithFile logs to stdout and appends the same lines to path. The returned
// closer releases the file; it is a no-op when path is empty.
func NewWithFile(level, path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return New(level), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	handler := newTextHandler(io.MultiWriter(os.Stdout, f), level)
	return slog.New(NewRedactingHandler(handler)), f, nil
}

func newTextHandler(w io.Writer, level string) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LevelFromString(level),
	})
}

// LevelFromString maps a config level name onto slog; unknown names mean info.
func LevelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
