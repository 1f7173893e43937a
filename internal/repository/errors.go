package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	// Identity collisions are serialized through the constraint rather than
	// a check-then-act lookup.
	ErrDuplicate = errors.New("repository: duplicate key")
)
