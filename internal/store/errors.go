package store

import "errors"

// Errors returned by Store implementations. Callers match them with errors.Is.
var (
	// ErrValidation means the booking payload was rejected before any write.
	ErrValidation = errors.New("invalid booking")
	// ErrConflict means the slot was taken between the read and the write.
	ErrConflict = errors.New("slot already booked")
	// ErrNotFound means the booking to delete no longer exists.
	ErrNotFound = errors.New("booking not found")
	// ErrAuthorization means the caller does not own the booking.
	ErrAuthorization = errors.New("booking belongs to another client")
)
