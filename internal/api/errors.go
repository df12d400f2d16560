// Package api is the HTTP client for the StudyHall backend.
package api

import (
	"errors"
	"fmt"
)

// ErrUsageLimit is returned when a request is rejected with HTTP 429. It is
// an expected outcome, not a transport error; callers remove the optimistic
// message and refresh the quota view.
var ErrUsageLimit = errors.New("usage limit exceeded")

// ErrNotFound is returned for HTTP 404 responses.
var ErrNotFound = errors.New("not found")

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}
