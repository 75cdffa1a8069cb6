package backend

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("backend resource not found")
	ErrConflict    = errors.New("backend rejected the request as a conflict")
	ErrRejected    = errors.New("backend rejected the request")
	ErrUnavailable = errors.New("backend unavailable")
)

// APIError carries the status and message of a failed backend call. It unwraps to
// the sentinel matching its status so callers can use errors.Is.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}
