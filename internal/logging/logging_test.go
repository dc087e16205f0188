package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactingHandlerMasksCredentials(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

	logger.With("SendKey", "SCT123").Info("login",
		"username", "author",
		"password", "hunter2",
		slog.Group("request", slog.String("Cookie", "ASP.NET_SessionId=abc")),
	)

	out := buf.String()
	require.Contains(t, out, "username=author")
	require.NotContains(t, out, "hunter2")
	require.NotContains(t, out, "SCT123")
	require.NotContains(t, out, "ASP.NET_SessionId=abc")
	require.Contains(t, out, "password="+Masked)
	require.Contains(t, out, "request.Cookie="+Masked)
}

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":         slog.LevelInfo,
		"DEBUG":    slog.LevelDebug,
		" warning": slog.LevelWarn,
		"error":    slog.LevelError,
		"verbose":  slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, LevelFromString(in), "level %q", in)
	}
}

func TestNewWithFileAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFile)
	logger, closer, err := NewWithFile("info", path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("tracking account", "journal", "JRNL")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "journal=JRNL")
	require.NotContains(t, string(raw), "hidden")
}

func TestNewWithFileRejectsMissingDirectory(t *testing.T) {
	t.Parallel()

	_, _, err := NewWithFile("info", filepath.Join(t.TempDir(), "missing", "x.log"))
	require.Error(t, err)
}
