package common

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{"error level", LogLevelError, slog.LevelError},
		{"warn level", LogLevelWarn, slog.LevelWarn},
		{"info level", LogLevelInfo, slog.LevelInfo},
		{"debug level", LogLevelDebug, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.level)
			if logger == nil || logger.Logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if logger.Level().ToSlogLevel() != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, logger.Level().ToSlogLevel())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"error":   LogLevelError,
		"warning": LogLevelWarn,
		"":        LogLevelInfo,
		"debug":   LogLevelDebug,
	}
	for in, want := range cases {
		got, ok := ParseLogLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseLogLevel("verbose"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}

func TestLogger_WithRequestMasksQueryKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelInfo, false)

	logger.WithRequest("GET", "https://api.hubapi.com/crm/v3/objects/contacts?hapikey=secret-123").Info("sending")

	out := buf.String()
	if strings.Contains(out, "secret-123") {
		t.Fatalf("expected hapikey to be masked, got %s", out)
	}
	if !strings.Contains(out, "component") && !strings.Contains(out, "method=GET") {
		t.Fatalf("expected request attributes in output, got %s", out)
	}
}

func TestLogger_JSONMasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelDebug, true).WithComponent("handler")

	logger.Debug("connection", "api_key", "pat-na1-abc", "api_location", "https://api.hubapi.com")

	out := buf.String()
	if strings.Contains(out, "pat-na1-abc") {
		t.Fatalf("api key leaked: %s", out)
	}
	if !strings.Contains(out, `"component":"handler"`) {
		t.Fatalf("expected component attribute, got %s", out)
	}
	if !strings.Contains(out, "https://api.hubapi.com") {
		t.Fatalf("expected non-sensitive value to pass through, got %s", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn, false)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestSetDefaultLogger_IgnoresNil(t *testing.T) {
	orig := GetLogger()
	defer SetDefaultLogger(orig)

	SetDefaultLogger(nil)
	if GetLogger() != orig {
		t.Fatal("nil logger must not replace the default")
	}
}
