package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "botfusion.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen:
  address: "127.0.0.1"
  port: 9090
upstream:
  base_url: "https://api.example.com/v1"
  api_key: "sk-test"
rate_limit:
  max_requests: 5
  window_sec: 30
models:
  default: "gpt-4o"
  available: ["gpt-4o", "gpt-4o-mini"]
data_dir: "/tmp/botfusion"
log_level: "debug"
log_format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen.Address != "127.0.0.1" || cfg.Listen.Port != 9090 {
		t.Errorf("Listen = %+v", cfg.Listen)
	}
	if cfg.Upstream.BaseURL != "https://api.example.com/v1" || cfg.Upstream.APIKey != "sk-test" {
		t.Errorf("Upstream = %+v", cfg.Upstream)
	}
	if cfg.RateLimit.MaxRequests != 5 || cfg.RateLimit.WindowSec != 30 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Models.Default != "gpt-4o" || len(cfg.Models.Available) != 2 {
		t.Errorf("Models = %+v", cfg.Models)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("logging config = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if got := cfg.SessionDBPath(); got != filepath.Join("/tmp/botfusion", "sessions.db") {
		t.Errorf("SessionDBPath() = %q", got)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
listen:
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen.Port != 9090 {
		t.Errorf("Listen.Port = %d, want 9090", cfg.Listen.Port)
	}
	if cfg.RateLimit.MaxRequests != 10 || cfg.RateLimit.WindowSec != 60 {
		t.Errorf("RateLimit = %+v, want defaults", cfg.RateLimit)
	}
	if cfg.Models.Default != "gpt-4o-mini" {
		t.Errorf("Models.Default = %q, want default", cfg.Models.Default)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("BOTFUSION_TEST_KEY", "sk-from-env")
	path := writeConfig(t, `
upstream:
  api_key: "${BOTFUSION_TEST_KEY}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Upstream.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want %q", cfg.Upstream.APIKey, "sk-from-env")
	}
}

func TestFindConfigExplicit(t *testing.T) {
	path := writeConfig(t, "listen:\n  port: 8080\n")

	found, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig() error: %v", err)
	}
	if found != path {
		t.Errorf("FindConfig() = %q, want %q", found, path)
	}
}

func TestFindConfigExplicitMissing(t *testing.T) {
	_, err := FindConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("FindConfig(missing explicit path) error = nil, want error")
	}
}

func TestSessionDBPathDefaultsToCwd(t *testing.T) {
	cfg := Default()
	if got := cfg.SessionDBPath(); got != filepath.Join(".", "sessions.db") {
		t.Errorf("SessionDBPath() = %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"  info  ", slog.LevelInfo},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLogLevel("bogus"); err == nil {
		t.Error("ParseLogLevel(bogus) error = nil, want error")
	}
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	logger, err := NewLogger(&buf, "info", "json")
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Info("hello", "key", "value")
	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("json log output = %q, want msg field", out)
	}

	logger.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug record emitted at info level")
	}
}

func TestNewLoggerUnknownFormatFallsBackToText(t *testing.T) {
	var buf strings.Builder
	logger, err := NewLogger(&buf, "info", "xml")
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text log output = %q, want msg=hello", buf.String())
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	if _, err := NewLogger(&strings.Builder{}, "bogus", "text"); err == nil {
		t.Error("NewLogger(bad level) error = nil, want error")
	}
}
