package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func setupLogger(t *testing.T, level Level) (string, func()) {
	t.Helper()

	logDir := t.TempDir()
	if err := Initialize(logDir, level); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	logPath := GetLogPath()
	if logPath == "" {
		t.Fatalf("GetLogPath returned empty path")
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			_ = Close()
		})
	}
	t.Cleanup(cleanup)

	return logPath, cleanup
}

func TestInitializeAndLogWrites(t *testing.T) {
	logPath, cleanup := setupLogger(t, LevelInfo)
	defer cleanup()

	Info("hello %s", "world")
	cleanup()

	if !strings.HasPrefix(filepath.Base(logPath), "ptyhost-") {
		t.Fatalf("unexpected log file name %q", logPath)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "INFO: hello world") {
		t.Fatalf("expected log line to contain message, got: %q", content)
	}
}

func TestSetEnabledDisablesLogging(t *testing.T) {
	logPath, cleanup := setupLogger(t, LevelDebug)
	defer cleanup()

	SetEnabled(false)
	Info("should not write")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(strings.TrimSpace(string(data))) != 0 {
		t.Fatalf("expected no log output when disabled, got: %q", string(data))
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath, cleanup := setupLogger(t, LevelWarn)
	defer cleanup()

	Info("info message")
	Warn("warn message")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "INFO: info message") {
		t.Fatalf("did not expect info log at warn level: %q", content)
	}
	if !strings.Contains(content, "WARN: warn message") {
		t.Fatalf("expected warn log, got: %q", content)
	}
}

func TestInitializeWriterAndSetLevel(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, LevelError)
	t.Cleanup(func() { _ = Close() })

	Warn("dropped")
	SetLevel(LevelDebug)
	Debug("kept %d", 1)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("warn should be filtered at error level: %q", out)
	}
	if !strings.Contains(out, "DEBUG: kept 1") {
		t.Fatalf("expected debug line after SetLevel, got %q", out)
	}
	if GetLogPath() != "" {
		t.Fatalf("writer logger should not report a file path")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{" WARN ", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"", LevelInfo, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoggingWithoutInitializeIsNoop(t *testing.T) {
	_ = Close()
	Error("nobody listens")
	WithError(os.ErrNotExist, "ctx")
}
