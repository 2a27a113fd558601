package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated means the session token is missing, expired or rejected.
// Callers send the user back to login; it is never retried.
var ErrUnauthenticated = errors.New("session missing or expired")

// TransportError wraps a network or HTTP failure talking to the API.
type TransportError struct {
	Resource string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError means the API has nothing for the requested id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ParseError means a payload could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError or a raw 404 from the API.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// classify maps a raw getJSON failure onto the error taxonomy.
func classify(resource string, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return err
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return &NotFoundError{Resource: resource, ID: id}
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrUnauthenticated, apiErr.Status)
		}
	}
	return &TransportError{Resource: resource, Err: err}
}
