package apiclient

import (
	"fmt"
	"net/http"
)

// APIError is an error response from the skiffd API, decoded from the
// RFC 7807 problem document the server emits.
type APIError struct {
	StatusCode int    `json:"status"`
	Title      string `json:"title"`
	Detail     string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// IsAuthError reports whether the request was rejected for authentication
// reasons, meaning a token refresh or re-login may fix it.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsUnavailable reports whether the server declined the request because no
// connected client could take it.
func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}
