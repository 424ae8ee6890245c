package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://localhost:5000" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Server.Timeout)
	}
	if cfg.Server.RateLimit != 10 || cfg.Server.Burst != 5 {
		t.Errorf("rate = %v burst = %d", cfg.Server.RateLimit, cfg.Server.Burst)
	}
	if want := filepath.Join(home, ".taskboard", "taskboard.log"); cfg.Logger.File != want {
		t.Errorf("log file = %q, want %q", cfg.Logger.File, want)
	}
	if cfg.UI.Theme != "classic" {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if got := cfg.Server.LoginURL(); got != "http://localhost:5000/login" {
		t.Errorf("login url = %q", got)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`server:
  url: http://tasks.example.com/
  timeout: 3s
  burst: 0
ui:
  theme: neon
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKBOARD_LOGGER_LEVEL", "debug")

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://tasks.example.com" {
		t.Errorf("trailing slash kept: %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Server.Timeout)
	}
	if cfg.Server.Burst != 1 {
		t.Errorf("burst = %d, want clamped to 1", cfg.Server.Burst)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("env override ignored: level = %q", cfg.Logger.Level)
	}
	if cfg.UI.Theme != "neon" {
		t.Errorf("ui = %+v", cfg.UI)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
