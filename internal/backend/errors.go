package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the backend reports 404 for a path.
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when the backend reports 401 or 403.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAuthFailed is returned when backend login is rejected.
	ErrAuthFailed = errors.New("backend authentication failed")
)

// StatusError is a non-2xx backend reply tied to the path of the operation
// that triggered it. Its message is forwarded verbatim to clients inside
// op_error replies, hence the user-facing capitalization.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("Permission denied: %s", e.Path)
	case http.StatusNotFound:
		return fmt.Sprintf("Resource not found: %s", e.Path)
	default:
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Path)
	}
}

// Unwrap maps the status onto the package sentinels so callers can use
// errors.Is without inspecting codes.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrPermissionDenied
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}
