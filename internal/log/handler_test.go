package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMaskingHandler(t *testing.T) {
	t.Parallel()

	t.Run("masks cookie values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("fetch", "url", "http://x.test/", "cookie", "session=abc123")

		out := buf.String()
		if strings.Contains(out, "abc123") {
			t.Errorf("cookie value leaked into log output: %s", out)
		}
		if !strings.Contains(out, MaskValue) {
			t.Errorf("expected mask marker in output: %s", out)
		}
		if !strings.Contains(out, "http://x.test/") {
			t.Errorf("non-sensitive attribute missing from output: %s", out)
		}
	})

	t.Run("masks case-insensitively", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("fetch", "Authorization", "Bearer tok")

		if strings.Contains(buf.String(), "Bearer tok") {
			t.Errorf("authorization value leaked: %s", buf.String())
		}
	})

	t.Run("masks inside groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("fetch", slog.Group("request", slog.String("cookie", "k=v")))

		if strings.Contains(buf.String(), "k=v") {
			t.Errorf("grouped cookie value leaked: %s", buf.String())
		}
	})

	t.Run("masks attributes added via With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

		logger.With("token", "tok123").Info("fetch")

		if strings.Contains(buf.String(), "tok123") {
			t.Errorf("With attribute leaked: %s", buf.String())
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Debug("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug message should be suppressed without verbose")
		}
		if !strings.Contains(out, "shown") {
			t.Error("warn message should be logged")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("visible")

		if !strings.Contains(buf.String(), "visible") {
			t.Error("debug message should be logged in verbose mode")
		}
	})
}
