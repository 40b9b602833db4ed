package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON error body the server sends on non-2xx statuses.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Text returns the most specific message the server provided.
func (e *ErrorResponse) Text() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	default:
		return e.Error
	}
}

// Error is a non-2xx server response surfaced to callers. The status code is
// preserved so boundaries can classify it (401 auth, 409 conflict, ...).
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// StatusOf extracts the HTTP status carried by err, or 0 if err is not a
// server response error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 server response.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsConflict reports whether err is a 409 server response.
func IsConflict(err error) bool {
	return StatusOf(err) == http.StatusConflict
}

// IsNotFound reports whether err is a 404 server response.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
