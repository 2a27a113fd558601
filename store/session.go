package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pasajes-cli/service"
)

type session struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// SessionStore keeps the bearer token of the logged in user in the config
// directory. It satisfies service.TokenProvider.
type SessionStore struct {
	path string
	now  func() time.Time
}

func NewSessionStore() (*SessionStore, error) {
	path, err := configPath("session.json")
	if err != nil {
		return nil, err
	}
	return &SessionStore{path: path, now: time.Now}, nil
}

// Token reads the stored token on every call so a login from another
// terminal is picked up without restarting.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", service.ErrUnauthenticated
		}
		return "", err
	}
	var current session
	if err := json.Unmarshal(data, &current); err != nil {
		return "", errors.New("invalid session format")
	}
	return service.CheckToken(current.Token, s.now())
}

func (s *SessionStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(session{Token: token, SavedAt: s.now()}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, payload, 0o600)
}

// Clear logs the user out. A missing session is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
