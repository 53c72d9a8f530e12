package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateHandle is returned when an account handle is already taken.
	ErrDuplicateHandle = errors.New("handle already registered")

	// ErrDuplicateEmail is returned when an email address is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)
