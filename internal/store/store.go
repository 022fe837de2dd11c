package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resort-facilities-backend/internal/model"
	"resort-facilities-backend/internal/slot"
)

// Store defines the interface for all booking persistence.
type Store interface {
	// FetchBookings returns every booking of facility f, oldest first.
	FetchBookings(ctx context.Context, f slot.Facility) ([]slot.Booking, error)
	// CreateBooking inserts b unless its slot is already taken and returns
	// the new booking id.
	CreateBooking(ctx context.Context, b slot.Booking) (string, error)
	// DeleteBooking removes booking id on behalf of uid.
	DeleteBooking(ctx context.Context, id, uid string) error
	// CountBookingsSince counts bookings of f whose period starts strictly after since.
	CountBookingsSince(ctx context.Context, f slot.Facility, since time.Time) (int64, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) FetchBookings(ctx context.Context, f slot.Facility) ([]slot.Booking, error) {
	var records []model.FacilityBooking
	if err := s.db.WithContext(ctx).
		Where("facility = ?", string(f)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %s bookings: %w", f, err)
	}

	bookings := make([]slot.Booking, 0, len(records))
	for _, r := range records {
		bookings = append(bookings, toBooking(r))
	}
	return bookings, nil
}

// CreateBooking relies on the unique slot key: the insert is skipped when a
// row for the same slot exists, which makes the check and the write atomic.
func (s *gormStore) CreateBooking(ctx context.Context, b slot.Booking) (string, error) {
	record, err := toRecord(b)
	if err != nil {
		return "", err
	}
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slot_key"}}, DoNothing: true}).
		Create(&record)
	if res.Error != nil {
		return "", fmt.Errorf("failed to create booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("%w: %s", ErrConflict, record.SlotKey)
	}

	zap.L().Debug("booking created",
		zap.String("id", record.ID),
		zap.String("slot_key", record.SlotKey),
		zap.String("client_uid", record.ClientUID))
	return record.ID, nil
}

func (s *gormStore) DeleteBooking(ctx context.Context, id, uid string) error {
	if id == "" || uid == "" {
		return fmt.Errorf("%w: booking id and client uid are required", ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.FacilityBooking
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load booking %s: %w", id, err)
		}
		if record.ClientUID != uid {
			return fmt.Errorf("%w: %s", ErrAuthorization, id)
		}

		res := tx.Delete(&model.FacilityBooking{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete booking %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}

func (s *gormStore) CountBookingsSince(ctx context.Context, f slot.Facility, since time.Time) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.FacilityBooking{}).
		Where("facility = ? AND start_from > ?", string(f), since.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s bookings: %w", f, err)
	}
	return count, nil
}

// SlotKey is the unique key of the slot a booking occupies.
func SlotKey(f slot.Facility, t slot.ResourceType, p slot.Period) string {
	return fmt.Sprintf("%s:%s:%d:%d", f, t, p.StartFrom, p.EndAt)
}

func toRecord(b slot.Booking) (model.FacilityBooking, error) {
	if _, err := slot.ParseFacility(string(b.Facility)); err != nil {
		return model.FacilityBooking{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(b.Client.UID) == "" {
		return model.FacilityBooking{}, fmt.Errorf("%w: client uid is required", ErrValidation)
	}
	if b.Period.EndAt <= b.Period.StartFrom {
		return model.FacilityBooking{}, fmt.Errorf("%w: period must end after it starts", ErrValidation)
	}
	if b.Facility == slot.FacilitySauna && b.Facilities != nil &&
		(b.Facilities.IsWashingMachine || b.Facilities.IsDryer) {
		return model.FacilityBooking{}, fmt.Errorf("%w: sauna bookings carry no machine flags", ErrValidation)
	}
	rt, ok := b.ResourceType()
	if !ok {
		return model.FacilityBooking{}, fmt.Errorf("%w: laundry bookings need exactly one machine", ErrValidation)
	}

	record := model.FacilityBooking{
		Facility:       string(b.Facility),
		ResourceType:   string(rt),
		SlotKey:        SlotKey(b.Facility, rt, b.Period),
		StartFrom:      b.Period.StartFrom.Time(),
		EndAt:          b.Period.EndAt.Time(),
		ClientUID:      b.Client.UID,
		ClientFullName: b.Client.FullName,
		Note:           b.Note,
	}
	if b.Facilities != nil {
		record.IsWashingMachine = b.Facilities.IsWashingMachine
		record.IsDryer = b.Facilities.IsDryer
	}
	return record, nil
}

func toBooking(r model.FacilityBooking) slot.Booking {
	b := slot.Booking{
		ID:       r.ID,
		Facility: slot.Facility(r.Facility),
		Period: slot.Period{
			StartFrom: slot.InstantOf(r.StartFrom),
			EndAt:     slot.InstantOf(r.EndAt),
		},
		Client: slot.Client{UID: r.ClientUID, FullName: r.ClientFullName},
		Note:   r.Note,
	}
	if b.Facility == slot.FacilityLaundry {
		b.Facilities = &slot.LaundryFacilities{
			IsWashingMachine: r.IsWashingMachine,
			IsDryer:          r.IsDryer,
		}
	}
	return b
}
