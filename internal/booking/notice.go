package booking

import (
	"fmt"

	"resort-facilities-backend/internal/slot"
)

// NoticeStatus drives how the notice is styled.
type NoticeStatus string

const (
	NoticeSuccess NoticeStatus = "success"
	NoticeError   NoticeStatus = "error"
	NoticeInfo    NoticeStatus = "info"
)

// Notice is the user-facing outcome of a command, rendered transiently by
// the client.
type Notice struct {
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Status  NoticeStatus `json:"status"`
}

const slotTimeLayout = "Mon 2 Jan 15:04"

func resourceLabel(t slot.ResourceType) string {
	switch t {
	case slot.ResourceWasher:
		return "washing machine"
	case slot.ResourceDryer:
		return "dryer"
	}
	return string(t)
}

func bookedNotice(s slot.Slot) Notice {
	return Notice{
		Title:   "Success",
		Message: fmt.Sprintf("Your %s booking for %s is confirmed.", resourceLabel(s.Type), s.Start.Format(slotTimeLayout)),
		Status:  NoticeSuccess,
	}
}

func cancelledNotice(s slot.Slot) Notice {
	return Notice{
		Title:   "Success",
		Message: fmt.Sprintf("Your %s booking for %s has been cancelled.", resourceLabel(s.Type), s.Start.Format(slotTimeLayout)),
		Status:  NoticeSuccess,
	}
}

func takenNotice() Notice {
	return Notice{
		Title:   "Booked",
		Message: "This slot is already booked by another guest.",
		Status:  NoticeInfo,
	}
}

// ErrorNotice renders err for the user. Validation messages from the store
// are passed through as they are.
func ErrorNotice(err error) Notice {
	n := Notice{Title: "Error", Status: NoticeError}
	switch Kind(err) {
	case "cutoff":
		n.Message = "You cannot modify a slot that is within 2 hours of the current time."
	case "pending":
		n.Message = "A request for this slot is already in progress."
	case "invalid_slot":
		n.Message = "This slot does not exist."
	case "validation":
		n.Message = err.Error()
	case "conflict":
		n.Message = "This slot was just booked by someone else. The schedule has been refreshed."
	case "not_found":
		n.Message = "This booking no longer exists. The schedule has been refreshed."
	case "unauthorized":
		n.Message = "You can only cancel your own bookings."
	default:
		n.Message = "The booking service could not be reached. Please try again."
	}
	return n
}
