package repository

import "errors"

var (
	// ErrNotFound is returned when a requested receipt does not exist.
	ErrNotFound = errors.New("receipt not found")
)
