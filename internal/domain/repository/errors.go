package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	// (users.email, sessions.token).
	ErrDuplicate = errors.New("duplicate")
)
