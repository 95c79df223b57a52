package models

import "errors"

var (
	// ErrValidation marks a request with missing or malformed fields
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an unknown user or match
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a persistence failure
	ErrStorage = errors.New("storage error")
	// ErrFrozen marks a message sent while the sender is frozen
	ErrFrozen = errors.New("sending is frozen")
	// ErrNoMatchAvailable is returned when there is no other profile to pair with
	ErrNoMatchAvailable = errors.New("no matches available yet")
)
