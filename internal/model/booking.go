package model

import "time"

// FacilityBooking is a committed sauna or laundry reservation.
type FacilityBooking struct {
	ID           string `gorm:"primaryKey;size:36"`
	Facility     string `gorm:"size:16;not null;index:idx_facility_start,priority:1"`
	ResourceType string `gorm:"size:16;not null"`
	// SlotKey is the join key (facility, resource, start, end) and is unique,
	// so two creates for the same slot cannot both land.
	SlotKey          string    `gorm:"size:96;not null;uniqueIndex"`
	StartFrom        time.Time `gorm:"not null;index:idx_facility_start,priority:2"`
	EndAt            time.Time `gorm:"not null"`
	ClientUID        string    `gorm:"column:client_uid;size:128;not null;index"`
	ClientFullName   string    `gorm:"size:256"`
	IsWashingMachine bool      `gorm:"not null"`
	IsDryer          bool      `gorm:"not null"`
	Note             string    `gorm:"size:1024"`
	CreatedAt        time.Time `gorm:"not null"`
}
