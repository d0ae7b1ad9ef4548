package repository

import "errors"

// Common repository errors.
var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record cannot be stored.
	ErrInvalidRecord = errors.New("invalid record")
)
