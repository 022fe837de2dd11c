package stream

import (
	"sync"

	"resort-facilities-backend/internal/slot"
)

// Broker fans out "bookings changed" signals per facility to open
// subscriptions. Signals carry no payload; subscribers refetch.
type Broker struct {
	mu   sync.Mutex
	subs map[slot.Facility]map[*Subscription]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[slot.Facility]map[*Subscription]struct{})}
}

// Subscription is an owned handle on a facility's change signals. It stays
// registered until Close is called on it.
type Subscription struct {
	broker   *Broker
	facility slot.Facility
	ch       chan struct{}
	once     sync.Once
}

// Open registers a new subscription for f.
func (b *Broker) Open(f slot.Facility) *Subscription {
	sub := &Subscription{
		broker:   b,
		facility: f,
		// One buffered signal is enough: a subscriber that is behind only
		// needs to know that something changed since it last looked.
		ch: make(chan struct{}, 1),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[f] == nil {
		b.subs[f] = make(map[*Subscription]struct{})
	}
	b.subs[f][sub] = struct{}{}
	return sub
}

// Publish signals every open subscription of f without blocking.
func (b *Broker) Publish(f slot.Facility) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[f] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of open subscriptions of f.
func (b *Broker) Len(f slot.Facility) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[f])
}

// C delivers a value whenever the facility's bookings may have changed.
// It is closed by Close.
func (s *Subscription) C() <-chan struct{} {
	return s.ch
}

// Facility returns the facility the subscription listens to.
func (s *Subscription) Facility() slot.Facility {
	return s.facility
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.broker
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[s.facility], s)
		if len(b.subs[s.facility]) == 0 {
			delete(b.subs, s.facility)
		}
		close(s.ch)
	})
}
