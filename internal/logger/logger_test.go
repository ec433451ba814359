package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"detectreport/internal/config"
)

func TestLogger_WritesPerLevelFiles(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(&config.Config{LogDirectory: dir})
	defer l.Close()

	l.Info("frame %d ok", 1)
	l.Warning("no frame read, skipping")
	l.Error("send failed: %v", "boom")

	tests := []struct {
		file     string
		contains string
	}{
		{"info.log", "frame 1 ok"},
		{"warning.log", "no frame read, skipping"},
		{"error.log", "send failed: boom"},
	}

	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tt.file))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", tt.file, err)
		}
		if !strings.Contains(string(data), tt.contains) {
			t.Errorf("%s: expected %q in %q", tt.file, tt.contains, string(data))
		}
	}
}

func TestLogger_CleanLogs(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(&config.Config{LogDirectory: dir})
	defer l.Close()

	l.Warning("something odd %s", strings.Repeat("x", 120))
	if err := l.CleanLogs("warning.log"); err != nil {
		t.Fatalf("CleanLogs failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "warning.log"))
	if err != nil {
		t.Fatalf("Failed to read warning.log: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty warning.log, got %q", string(data))
	}

	l.Warning("after clear")

	data, err = os.ReadFile(filepath.Join(dir, "warning.log"))
	if err != nil {
		t.Fatalf("Failed to read warning.log: %v", err)
	}
	if strings.Contains(string(data), "\x00") {
		t.Errorf("Expected no NUL padding after clearing, got %q", string(data))
	}
	if strings.Contains(string(data), "something odd") || !strings.Contains(string(data), "after clear") {
		t.Errorf("Expected only the new entry, got %q", string(data))
	}
}

func TestLogger_CleanLogsUnknownFile(t *testing.T) {
	l := NewLogger(&config.Config{LogDirectory: t.TempDir()})
	defer l.Close()

	if err := l.CleanLogs("debug.log"); err == nil {
		t.Error("Expected error for a file the logger does not own")
	}
}

func TestLevelFile(t *testing.T) {
	tests := []struct {
		level    string
		expected string
		ok       bool
	}{
		{"info", "info.log", true},
		{"warning", "warning.log", true},
		{"error", "error.log", true},
		{"debug", "", false},
	}

	for _, tt := range tests {
		name, ok := LevelFile(tt.level)
		if name != tt.expected || ok != tt.ok {
			t.Errorf("LevelFile(%s) = %s, %v; expected %s, %v", tt.level, name, ok, tt.expected, tt.ok)
		}
	}
}

func TestNewDiscard(t *testing.T) {
	l := NewDiscard()
	l.Info("ignored %d", 1)
	l.Warning("ignored")
	l.Error("ignored")
	if err := l.Close(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
