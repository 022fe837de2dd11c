package booking

import (
	"errors"

	"resort-facilities-backend/internal/slot"
	"resort-facilities-backend/internal/store"
)

var (
	// ErrCutoffViolation rejects clicks on slots starting within Cutoff of
	// now. It never reaches the store.
	ErrCutoffViolation = errors.New("slot is inside the cutoff window")
	// ErrPending rejects a click while a mutation for the same slot is in flight.
	ErrPending = errors.New("request already in progress")
)

// Kind classifies an error returned by the handler into a stable label,
// used for metrics and for mapping to transport status codes.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCutoffViolation):
		return "cutoff"
	case errors.Is(err, ErrPending):
		return "pending"
	case errors.Is(err, slot.ErrInvalidSlot):
		return "invalid_slot"
	case errors.Is(err, store.ErrValidation):
		return "validation"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrAuthorization):
		return "unauthorized"
	}
	return "unavailable"
}
