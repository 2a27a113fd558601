package logger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pasajes.log")

	l, err := New("info", path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	l.LogFetchFailure(context.Background(), "layout", "50", errors.New("boom"))
	l.LogRefresh(context.Background(), "50", "7", 12, 2, 0)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Fetch Failed") || !strings.Contains(out, "error=boom") {
		t.Fatalf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "Seat Map Refreshed") {
		t.Fatalf("expected debug record to be filtered: %s", out)
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range tests {
		if got := getLogLevel(input); got != want {
			t.Fatalf("level %q: expected %s, got %s", input, want, got)
		}
	}
}

func TestDiscard_CloseIsNoop(t *testing.T) {
	if err := Discard().Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
