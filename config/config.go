// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	API struct {
		BaseURL     string        `validate:"required,url"`
		Timeout     time.Duration `validate:"gt=0"`
		MaxAttempts int           `validate:"gte=1,lte=10"`
		RetryBase   time.Duration `validate:"gte=0"`
		RetryCap    time.Duration `validate:"gtefield=RetryBase"`
		Token       string
	}
	Screen struct {
		FocusRefreshDelay time.Duration `validate:"gte=0"`
		PollInterval      time.Duration `validate:"gte=0"`
		NoticeDuration    time.Duration `validate:"gt=0"`
	}
	Log struct {
		Level string `validate:"omitempty,oneof=debug info warn warning error"`
		File  string
	}
}

// Load reads .env when present, then the process environment. Unparseable
// values fall back to their defaults; out of range values are an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.API.BaseURL = envOrDefault("PASAJES_API_URL", "http://localhost:3000/api")
	cfg.API.Timeout = envOrDefaultDuration("PASAJES_HTTP_TIMEOUT", 12*time.Second)
	cfg.API.MaxAttempts = envOrDefaultInt("PASAJES_MAX_ATTEMPTS", 2)
	cfg.API.RetryBase = envOrDefaultDuration("PASAJES_RETRY_BASE", 200*time.Millisecond)
	cfg.API.RetryCap = envOrDefaultDuration("PASAJES_RETRY_CAP", 1200*time.Millisecond)
	cfg.API.Token = os.Getenv("PASAJES_TOKEN")
	cfg.Screen.FocusRefreshDelay = envOrDefaultDuration("PASAJES_FOCUS_REFRESH_DELAY", time.Second)
	cfg.Screen.PollInterval = envOrDefaultDuration("PASAJES_POLL_INTERVAL", 30*time.Second)
	cfg.Screen.NoticeDuration = envOrDefaultDuration("PASAJES_NOTICE_DURATION", 2*time.Second)
	cfg.Log.Level = envOrDefault("LOG_LEVEL", "info")
	cfg.Log.File = os.Getenv("LOG_FILE")

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envOrDefaultDuration accepts Go durations ("1500ms") or bare milliseconds.
func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return def
}
