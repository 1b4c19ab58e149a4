package logger

import (
	"bytes"
	"strings"
	"testing"

	"sp500-dashboard/src/models"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG":   LevelDebug,
		"debug":   LevelDebug,
		"WARN":    LevelWarning,
		"warning": LevelWarning,
		"ERROR":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&models.MConfig{LogLevel: "WARNING"}, "test")
	l.SetOutput(&buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warning("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[test] WARNING: shown 3") {
		t.Errorf("missing warning line in %q", out)
	}
	if !strings.Contains(out, "[test] ERROR: shown 4") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(nil, "app")
	l.SetOutput(&buf)

	l.Named("yahoo").Info("fetched")
	if !strings.Contains(buf.String(), "[app.yahoo] INFO: fetched") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
