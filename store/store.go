package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pasajes-cli/booking"
)

const (
	appDir         = "pasajes-cli"
	handoffTTL     = 15 * time.Minute
	maxRecentBuses = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

type RecentBus struct {
	BusID       string `json:"bus_id"`
	RouteID     string `json:"route_id"`
	WorksheetID string `json:"worksheet_id"`
}

type busHistory struct {
	Buses []RecentBus `json:"buses"`
}

// SaveHandoff persists the prepared booking request for the payment step
// and returns the file it was written to.
func SaveHandoff(req booking.Request) (string, error) {
	path, err := cachePath("handoff.json")
	if err != nil {
		return "", err
	}
	return path, saveCache(path, req)
}

// LoadHandoff returns the last prepared request and whether it is recent
// enough to be paid for.
func LoadHandoff() (booking.Request, bool, error) {
	path, err := cachePath("handoff.json")
	if err != nil {
		return booking.Request{}, false, err
	}
	cache, err := loadCache[booking.Request](path)
	if err != nil {
		return booking.Request{}, false, err
	}
	if cache.UpdatedAt.IsZero() {
		return booking.Request{}, false, nil
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= handoffTTL, nil
}

func LoadRecentBuses() ([]RecentBus, error) {
	path, err := configPath("buses.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history busHistory
	if err := json.Unmarshal(data, &history); err == nil {
		return history.Buses, nil
	}
	return nil, errors.New("invalid bus history format")
}

// RememberBus moves bus to the front of the history, replacing any entry for
// the same bus and route.
func RememberBus(bus RecentBus) error {
	bus.BusID = strings.TrimSpace(bus.BusID)
	if bus.BusID == "" {
		return errors.New("bus id is required")
	}
	history, _ := LoadRecentBuses()
	next := []RecentBus{bus}

	for _, existing := range history {
		if existing.BusID == bus.BusID && existing.RouteID == bus.RouteID {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentBuses {
			break
		}
	}

	return saveRecentBuses(next)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	payload, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func saveRecentBuses(buses []RecentBus) error {
	path, err := configPath("buses.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	history := busHistory{Buses: buses}
	payload, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}
