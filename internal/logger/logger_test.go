package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestInitLogger_ValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			if err := InitLogger(level, &bytes.Buffer{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if GetLogger() == nil {
				t.Fatal("GetLogger() returned nil")
			}
		})
	}
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	if err := InitLogger("verbose", &bytes.Buffer{}); err == nil {
		t.Error("expected error for invalid log level, got nil")
	}
}

func TestGetLogger_BeforeInit(t *testing.T) {
	globalLogger = nil

	if GetLogger() != slog.Default() {
		t.Error("GetLogger() should return slog.Default() when not initialized")
	}
}

func TestInitLogger_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := InitLogger("warn", buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	GetLogger().Info("hidden")
	GetLogger().Warn("shown", "lane", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "lane=3") {
		t.Errorf("unexpected output %q", out)
	}
}
