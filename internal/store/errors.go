package store

import "errors"

// Common store errors
var (
	// ErrModelNotFound indicates that the model does not exist
	ErrModelNotFound = errors.New("model not found")

	// ErrAccountNotFound indicates that the actor has no account
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists indicates that the actor is already registered
	ErrAccountExists = errors.New("account already exists")

	// ErrWrongRepository indicates an address outside of the served repository
	ErrWrongRepository = errors.New("address belongs to another repository")
)
