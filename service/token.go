package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenProvider supplies the session bearer token for each request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenProvider.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken is a fixed token, typically taken from the environment.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return CheckToken(string(t), time.Now())
}

// CheckToken rejects empty tokens and JWTs whose exp is not after now.
// Opaque (non-JWT) tokens are passed through; the server has the last word.
func CheckToken(token string, now time.Time) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthenticated
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return token, nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return "", fmt.Errorf("%w: token expired at %s", ErrUnauthenticated, claims.ExpiresAt.Format(time.RFC3339))
	}
	return token, nil
}
