package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for raw, want := range cases {
		t.Setenv("LOG_LEVEL", raw)
		logger, err := NewLogger("test")
		if err != nil {
			t.Fatalf("NewLogger with LOG_LEVEL=%q: %v", raw, err)
		}
		if !logger.Core().Enabled(want) {
			t.Errorf("LOG_LEVEL=%q: expected %s enabled", raw, want)
		}
		if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
			t.Errorf("LOG_LEVEL=%q: expected %s disabled", raw, want-1)
		}
	}
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FORMAT", "console")
	if _, err := NewLogger("test"); err != nil {
		t.Fatalf("console logger: %v", err)
	}
}
