package slot

import (
	"fmt"
	"strings"
	"time"
)

// Operating hours are fixed: the first slot starts at 08:00, the last at
// 21:00, and the facility closes at 22:00.
const (
	FirstHour = 8
	LastHour  = 21
	CloseHour = LastHour + 1
	Length    = time.Hour
)

const dateLayout = "2006-01-02"

// View is the window a grid is generated for.
type View string

const (
	ViewDaily  View = "daily"
	ViewWeekly View = "weekly"
)

// ParseView validates a view name; an empty string selects the weekly view.
func ParseView(raw string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(raw))); v {
	case "":
		return ViewWeekly, nil
	case ViewDaily, ViewWeekly:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", raw)
}

// Grid generates the canonical slot set. Calendar arithmetic happens in
// Location; WeekStart decides which day opens a weekly view.
type Grid struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// NewGrid returns a grid in loc (UTC when nil).
func NewGrid(loc *time.Location, weekStart time.Weekday) Grid {
	if loc == nil {
		loc = time.UTC
	}
	return Grid{Location: loc, WeekStart: weekStart}
}

func (g Grid) loc() *time.Location {
	if g.Location == nil {
		return time.UTC
	}
	return g.Location
}

// Days returns midnight of every day the view covers, in order.
func (g Grid) Days(ref time.Time, view View) []time.Time {
	y, m, d := ref.In(g.loc()).Date()
	if view == ViewDaily {
		return []time.Time{time.Date(y, m, d, 0, 0, 0, 0, g.loc())}
	}

	offset := (int(time.Date(y, m, d, 0, 0, 0, 0, g.loc()).Weekday()) - int(g.WeekStart) + 7) % 7
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = time.Date(y, m, d-offset+i, 0, 0, 0, 0, g.loc())
	}
	return days
}

// Generate returns every slot of facility f in the view around ref, ordered
// by day, hour and resource type, all available and unowned.
func (g Grid) Generate(f Facility, ref time.Time, view View) []Slot {
	days := g.Days(ref, view)
	types := f.ResourceTypes()

	slots := make([]Slot, 0, len(days)*(LastHour-FirstHour+1)*len(types))
	for _, day := range days {
		for hour := FirstHour; hour <= LastHour; hour++ {
			for _, t := range types {
				slots = append(slots, g.build(f, day, hour, t))
			}
		}
	}
	return slots
}

// At returns the single slot for (date, hour, t). t may be empty for the sauna.
func (g Grid) At(f Facility, year int, month time.Month, day, hour int, t ResourceType) (Slot, error) {
	if f == FacilitySauna && t == "" {
		t = ResourceSauna
	}
	if !f.has(t) {
		return Slot{}, fmt.Errorf("%w: %s has no %q resource", ErrInvalidSlot, f, t)
	}
	if hour < FirstHour || hour > LastHour {
		return Slot{}, fmt.Errorf("%w: hour %d is outside opening hours", ErrInvalidSlot, hour)
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, g.loc())
	if date.Year() != year || date.Month() != month || date.Day() != day {
		return Slot{}, fmt.Errorf("%w: %04d-%02d-%02d is not a calendar date", ErrInvalidSlot, year, month, day)
	}
	return g.build(f, date, hour, t), nil
}

func (g Grid) build(f Facility, day time.Time, hour int, t ResourceType) Slot {
	y, m, d := day.Date()
	start := time.Date(y, m, d, hour, 0, 0, 0, g.loc())
	return Slot{
		ID:        ID(f, day, hour, t),
		Facility:  f,
		Type:      t,
		Start:     start,
		End:       start.Add(Length),
		Status:    StatusAvailable,
		Ownership: OwnershipNone,
	}
}

// ID renders the deterministic slot key: "{date}-{hour}" for the sauna and
// "{date}-{hour}-{type}" for laundry machines.
func ID(f Facility, day time.Time, hour int, t ResourceType) string {
	id := fmt.Sprintf("%s-%d", day.Format(dateLayout), hour)
	if f == FacilityLaundry {
		id += "-" + string(t)
	}
	return id
}
