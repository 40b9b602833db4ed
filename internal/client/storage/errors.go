package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no token pair is stored
	ErrAuthNotFound = errors.New("authentication data not found")
)
