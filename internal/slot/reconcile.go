package slot

// Match finds the booking occupying s: the same start and end instant and,
// for laundry, the same machine. Partial or shifted bookings never match.
// When several bookings match, the first in input order wins.
func Match(s Slot, bookings []Booking) (Booking, bool) {
	start, end := InstantOf(s.Start), InstantOf(s.End)
	for _, b := range bookings {
		if b.Period.StartFrom != start || b.Period.EndAt != end {
			continue
		}
		if b.Facility != "" && b.Facility != s.Facility {
			continue
		}
		if s.Facility == FacilityLaundry && !b.Covers(s.Type) {
			continue
		}
		return b, true
	}
	return Booking{}, false
}

// Reconcile overlays bookings onto a generated grid for the user uid.
// The input slice is left untouched.
func Reconcile(slots []Slot, bookings []Booking, uid string) []Slot {
	out := make([]Slot, len(slots))
	for i, s := range slots {
		s.Status, s.Ownership, s.BookingID = StatusAvailable, OwnershipNone, ""
		if b, ok := Match(s, bookings); ok {
			s.Status = StatusBooked
			s.Ownership = OwnershipOther
			if uid != "" && b.Client.UID == uid {
				s.Ownership = OwnershipMine
				s.BookingID = b.ID
			}
		}
		out[i] = s
	}
	return out
}
