package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that the client is not logged in
	ErrSessionNotFound = errors.New("session not found")

	// ErrReplicaNotFound indicates that no replica of the model is stored
	ErrReplicaNotFound = errors.New("replica not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
