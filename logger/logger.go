package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger wraps slog.Logger with the domain events of the seat screen.
// The terminal UI owns stdout, so output goes to a file or nowhere.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New creates a logger at the given level writing to path. An empty path
// discards every record.
func New(level string, path string) (*Logger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Discard(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	lvl := getLogLevel(level)
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return &Logger{Logger: slog.New(handler), closer: file}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithBus adds the bus id to every record.
func (l *Logger) WithBus(busID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("bus_id", busID)), closer: l.closer}
}

// LogRefresh logs a completed layout+fare fetch.
func (l *Logger) LogRefresh(ctx context.Context, busID, routeID string, seats, fares int, duration time.Duration) {
	l.Logger.DebugContext(ctx,
		"Seat Map Refreshed",
		slog.String("bus_id", busID),
		slog.String("route_id", routeID),
		slog.Int("seats", seats),
		slog.Int("fares", fares),
		slog.Duration("duration", duration),
	)
}

// LogFetchFailure logs a fetch that fell back to an empty collection.
func (l *Logger) LogFetchFailure(ctx context.Context, source, id string, err error) {
	l.Logger.WarnContext(ctx,
		"Fetch Failed",
		slog.String("source", source),
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
}

// LogStaleRefresh logs a refresh result discarded because a newer one was issued.
func (l *Logger) LogStaleRefresh(ctx context.Context, token, latest uint64) {
	l.Logger.DebugContext(ctx,
		"Stale Refresh Discarded",
		slog.Uint64("token", token),
		slog.Uint64("latest", latest),
	)
}

// LogSeatsDropped logs selected seats taken by another buyer.
func (l *Logger) LogSeatsDropped(ctx context.Context, busID string, seats []int) {
	l.Logger.InfoContext(ctx,
		"Selected Seats Taken Elsewhere",
		slog.String("bus_id", busID),
		slog.Any("seats", seats),
	)
}

// LogGenericFare logs a seat type priced with a fare of another type.
func (l *Logger) LogGenericFare(ctx context.Context, seatType, fareID string) {
	l.Logger.WarnContext(ctx,
		"Seat Type Without Fare",
		slog.String("seat_type", seatType),
		slog.String("fare_id", fareID),
	)
}

// LogHandoff logs a booking request handed to the next step.
func (l *Logger) LogHandoff(ctx context.Context, requestID, busID string, seats int, total string) {
	l.Logger.InfoContext(ctx,
		"Booking Handoff",
		slog.String("request_id", requestID),
		slog.String("bus_id", busID),
		slog.Int("seats", seats),
		slog.String("total", total),
	)
}
