package storage

import "errors"

// Common storage errors
var (
	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")
)
