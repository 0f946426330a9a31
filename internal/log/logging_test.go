package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, expected := range cases {
		if got := ParseLevel(in); got != expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", in, got, expected)
		}
	}
}

func TestLevelRangeSplitsStreams(t *testing.T) {
	var below, above bytes.Buffer
	logger := slog.New(fanout{hs: []slog.Handler{
		levelRange{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: slog.NewTextHandler(&below, nil)},
		levelRange{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: slog.NewTextHandler(&above, nil)},
	}})

	logger.Info("routine")
	logger.Error("broken")

	if !strings.Contains(below.String(), "routine") || strings.Contains(below.String(), "broken") {
		t.Errorf("below-error stream got %q", below.String())
	}
	if !strings.Contains(above.String(), "broken") || strings.Contains(above.String(), "routine") {
		t.Errorf("error stream got %q", above.String())
	}
}

func TestSetupWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worlder.log")
	logger, closeFiles, err := Setup("debug", path)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Debug("scan probe")
	closeFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "scan probe") {
		t.Errorf("log file content %q is missing the record", data)
	}
}

func TestSetupRejectsUnwritableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "worlder.log")
	if _, _, err := Setup("info", path); err == nil {
		t.Error("expected an error for a log file in a missing directory")
	}
}
