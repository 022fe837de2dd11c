package refresh

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"resort-facilities-backend/config"
	"resort-facilities-backend/internal/slot"
)

// Fetcher reads a facility's current bookings.
type Fetcher interface {
	FetchBookings(ctx context.Context, f slot.Facility) ([]slot.Booking, error)
}

// Publisher is told when a facility's bookings changed.
type Publisher interface {
	Publish(f slot.Facility)
}

// Service periodically re-fetches every facility's bookings and publishes
// a change signal when the set differs from the previous fetch. It picks up
// writes made by other instances or directly in the database.
type Service struct {
	cfg        config.RefreshConfig
	fetcher    Fetcher
	publisher  Publisher
	facilities []slot.Facility

	mu   sync.Mutex
	seen map[slot.Facility]uint64
}

// NewService creates a refresh service over all known facilities.
func NewService(cfg config.RefreshConfig, fetcher Fetcher, publisher Publisher) *Service {
	return &Service{
		cfg:        cfg,
		fetcher:    fetcher,
		publisher:  publisher,
		facilities: slot.Facilities,
		seen:       make(map[slot.Facility]uint64),
	}
}

// Run starts the refresh loop and blocks until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		zap.L().Info("booking refresh is disabled, not starting")
		return
	}
	zap.L().Info("starting booking refresh", zap.Duration("interval", s.cfg.Interval))

	s.RefreshOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("booking refresh shutting down")
			return
		case <-timer.C:
			s.RefreshOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// RefreshOnce fetches every facility once and returns the facilities whose
// bookings changed. The first successful fetch of a facility only records
// its state.
func (s *Service) RefreshOnce(ctx context.Context) []slot.Facility {
	var changed []slot.Facility
	for _, f := range s.facilities {
		bookings, err := s.fetcher.FetchBookings(ctx, f)
		if err != nil {
			// Keep the last fingerprint so a recovered fetch is compared
			// against real data, not against the failure.
			zap.L().Warn("booking refresh fetch failed", zap.String("facility", string(f)), zap.Error(err))
			continue
		}

		sum := Fingerprint(bookings)
		s.mu.Lock()
		prev, known := s.seen[f]
		s.seen[f] = sum
		s.mu.Unlock()

		if known && prev != sum {
			changed = append(changed, f)
			s.publisher.Publish(f)
		}
	}

	if len(changed) > 0 {
		zap.L().Info("booking refresh detected changes", zap.Int("facilities", len(changed)))
	}
	return changed
}

// Fingerprint hashes a booking set independent of its order.
func Fingerprint(bookings []slot.Booking) uint64 {
	keys := make([]string, len(bookings))
	for i, b := range bookings {
		var washer, dryer bool
		if b.Facilities != nil {
			washer, dryer = b.Facilities.IsWashingMachine, b.Facilities.IsDryer
		}
		keys[i] = fmt.Sprintf("%s|%s|%d|%d|%s|%t|%t",
			b.ID, b.Facility, b.Period.StartFrom, b.Period.EndAt, b.Client.UID, washer, dryer)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
