package slot

import (
	"encoding/json"
	"time"
)

// Instant is a point in time in UTC milliseconds. Bookings are converted to
// Instants once, when they enter the core, so matching never depends on how
// a timestamp was represented upstream.
type Instant int64

// InstantOf normalises t.
func InstantOf(t time.Time) Instant {
	return Instant(t.UnixMilli())
}

// Time returns the instant as a UTC time.
func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i)).UTC()
}

// Add shifts the instant by d, truncated to milliseconds.
func (i Instant) Add(d time.Duration) Instant {
	return i + Instant(d.Milliseconds())
}

// Sub returns i - j.
func (i Instant) Sub(j Instant) time.Duration {
	return time.Duration(i-j) * time.Millisecond
}

func (i Instant) String() string {
	return i.Time().Format(time.RFC3339)
}

// MarshalJSON encodes the instant as an RFC 3339 timestamp.
func (i Instant) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Time())
}

// UnmarshalJSON accepts an RFC 3339 timestamp.
func (i *Instant) UnmarshalJSON(b []byte) error {
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	*i = InstantOf(t)
	return nil
}
