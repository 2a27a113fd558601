package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// inTempDir keeps a developer's .env out of the test.
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3000/api" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.API.MaxAttempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", cfg.API.MaxAttempts)
	}
	if cfg.Screen.FocusRefreshDelay != time.Second {
		t.Fatalf("expected 1s focus delay, got %s", cfg.Screen.FocusRefreshDelay)
	}
	if cfg.Screen.PollInterval != 30*time.Second {
		t.Fatalf("expected 30s poll, got %s", cfg.Screen.PollInterval)
	}
	if cfg.Screen.NoticeDuration != 2*time.Second {
		t.Fatalf("expected 2s notices, got %s", cfg.Screen.NoticeDuration)
	}
}

func TestLoad_Overrides(t *testing.T) {
	inTempDir(t)
	t.Setenv("PASAJES_API_URL", "https://api.example.com/api")
	t.Setenv("PASAJES_FOCUS_REFRESH_DELAY", "1500")
	t.Setenv("PASAJES_POLL_INTERVAL", "0s")
	t.Setenv("PASAJES_MAX_ATTEMPTS", "3")
	t.Setenv("PASAJES_RETRY_BASE", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com/api" || cfg.API.MaxAttempts != 3 {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Screen.FocusRefreshDelay != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s focus delay, got %s", cfg.Screen.FocusRefreshDelay)
	}
	if cfg.Screen.PollInterval != 0 {
		t.Fatalf("expected polling disabled, got %s", cfg.Screen.PollInterval)
	}
	if cfg.API.RetryBase != 200*time.Millisecond {
		t.Fatalf("expected default retry base, got %s", cfg.API.RetryBase)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	inTempDir(t)
	if err := os.WriteFile(filepath.Join(".", ".env"), []byte("PASAJES_TOKEN=abc\nLOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	t.Setenv("PASAJES_TOKEN", "")
	os.Unsetenv("PASAJES_TOKEN")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.API.Token != "abc" || cfg.Log.Level != "debug" {
		t.Fatalf("expected values from .env, got token=%q level=%q", cfg.API.Token, cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad url", key: "PASAJES_API_URL", val: "not a url"},
		{name: "zero attempts", key: "PASAJES_MAX_ATTEMPTS", val: "0"},
		{name: "unknown level", key: "LOG_LEVEL", val: "chatty"},
		{name: "cap below base", key: "PASAJES_RETRY_CAP", val: "10ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}
