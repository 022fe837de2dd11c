package booking

import (
	"time"

	"github.com/patrickmn/go-cache"

	"resort-facilities-backend/internal/slot"
)

// Pending tags slots whose mutation is in flight. Entries expire after the
// TTL so a crashed request cannot lock a slot forever.
type Pending struct {
	entries *cache.Cache
	ttl     time.Duration
}

// NewPending creates a registry whose tags live at most ttl.
func NewPending(ttl time.Duration) *Pending {
	return &Pending{
		entries: cache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

// PendingKey identifies a slot across facilities.
func PendingKey(f slot.Facility, slotID string) string {
	return string(f) + "/" + slotID
}

// Acquire tags key and reports whether it was free.
func (p *Pending) Acquire(key string) bool {
	return p.entries.Add(key, struct{}{}, p.ttl) == nil
}

// Release clears the tag on key.
func (p *Pending) Release(key string) {
	p.entries.Delete(key)
}

// Has reports whether key is tagged.
func (p *Pending) Has(key string) bool {
	_, ok := p.entries.Get(key)
	return ok
}
