package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Makepad-fr/taskboard/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskboard.log")
	l, err := New(config.LoggerConfig{Level: "info", Encoding: "json", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden")
	l.Info("fetch failed")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "fetch failed") {
		t.Errorf("info entry missing: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %s", out)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(config.LoggerConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWithoutFileIsNop(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "info"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
}
