package repository

import "errors"

var (
	// ErrNotFound is returned when a requested key or entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded is returned when a write would exceed the storage quota
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrAccessDenied is returned when the storage backend refuses access
	ErrAccessDenied = errors.New("storage access denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
