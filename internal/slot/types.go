package slot

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSlot is returned when a slot cannot exist in the grid.
var ErrInvalidSlot = errors.New("invalid slot")

// Facility names a bookable resort facility.
type Facility string

const (
	FacilitySauna   Facility = "sauna"
	FacilityLaundry Facility = "laundry"
)

// Facilities lists every facility the grid knows about, in display order.
var Facilities = []Facility{FacilitySauna, FacilityLaundry}

// ParseFacility validates a facility name coming from the outside.
func ParseFacility(raw string) (Facility, error) {
	switch f := Facility(strings.ToLower(strings.TrimSpace(raw))); f {
	case FacilitySauna, FacilityLaundry:
		return f, nil
	}
	return "", fmt.Errorf("unknown facility %q", raw)
}

// ResourceTypes returns the resources one (day, hour) pair yields for the facility.
func (f Facility) ResourceTypes() []ResourceType {
	switch f {
	case FacilityLaundry:
		return []ResourceType{ResourceWasher, ResourceDryer}
	case FacilitySauna:
		return []ResourceType{ResourceSauna}
	}
	return nil
}

func (f Facility) has(t ResourceType) bool {
	for _, rt := range f.ResourceTypes() {
		if rt == t {
			return true
		}
	}
	return false
}

// ResourceType is the individual machine or room a slot reserves.
type ResourceType string

const (
	ResourceSauna  ResourceType = "sauna"
	ResourceWasher ResourceType = "washer"
	ResourceDryer  ResourceType = "dryer"
)

// Status is the reconciled booking state of a slot.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
)

// Ownership tags a booked slot relative to the viewing user.
type Ownership string

const (
	OwnershipNone  Ownership = "none"
	OwnershipMine  Ownership = "mine"
	OwnershipOther Ownership = "other"
)

// Slot is one bookable hour of one resource. Slots are derived, never stored.
type Slot struct {
	ID        string       `json:"id"`
	Facility  Facility     `json:"facility"`
	Type      ResourceType `json:"resourceType"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Status    Status       `json:"status"`
	Ownership Ownership    `json:"ownership"`
	// BookingID is only filled in for the viewer's own reservations.
	BookingID string `json:"bookingId,omitempty"`
}

// Period is the reserved interval of a booking.
type Period struct {
	StartFrom Instant `json:"startFrom"`
	EndAt     Instant `json:"endAt"`
}

// Client identifies who owns a booking.
type Client struct {
	UID      string `json:"uid"`
	FullName string `json:"fullName"`
}

// LaundryFacilities records which laundry machine a booking holds.
// Exactly one flag is set on a valid laundry booking.
type LaundryFacilities struct {
	IsWashingMachine bool `json:"isWashingMachine"`
	IsDryer          bool `json:"isDryer"`
}

// FacilitiesFor returns the laundry flags that reserve the given resource.
func FacilitiesFor(t ResourceType) *LaundryFacilities {
	switch t {
	case ResourceWasher:
		return &LaundryFacilities{IsWashingMachine: true}
	case ResourceDryer:
		return &LaundryFacilities{IsDryer: true}
	}
	return nil
}

// Booking is a committed reservation as the core sees it, after the store
// has normalised its instants.
type Booking struct {
	ID         string             `json:"bookingId"`
	Facility   Facility           `json:"facility"`
	Period     Period             `json:"bookingPeriod"`
	Client     Client             `json:"client"`
	Facilities *LaundryFacilities `json:"facilities,omitempty"`
	Note       string             `json:"note,omitempty"`
}

// ResourceType derives the reserved resource from the facility and the
// laundry flags. ok is false for a laundry booking with no or both flags set.
func (b Booking) ResourceType() (ResourceType, bool) {
	switch b.Facility {
	case FacilitySauna:
		return ResourceSauna, true
	case FacilityLaundry:
		if b.Facilities == nil || b.Facilities.IsWashingMachine == b.Facilities.IsDryer {
			return "", false
		}
		if b.Facilities.IsWashingMachine {
			return ResourceWasher, true
		}
		return ResourceDryer, true
	}
	return "", false
}

// Covers reports whether the booking's laundry flags reserve resource t.
func (b Booking) Covers(t ResourceType) bool {
	if b.Facilities == nil {
		return false
	}
	switch t {
	case ResourceWasher:
		return b.Facilities.IsWashingMachine
	case ResourceDryer:
		return b.Facilities.IsDryer
	}
	return false
}
