package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var slotIDRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(\d{1,2})(?:-([a-z]+))?$`)

// ParsedSlotID holds the parts of a slot id such as "2024-06-05-10-washer".
type ParsedSlotID struct {
	Year     int
	Month    time.Month
	Day      int
	Hour     int
	Resource string // empty for single-resource facilities
}

// ParseSlotID splits a slot id into its calendar date, start hour and
// optional resource suffix. It does not check the parts against opening
// hours; the grid does that when the slot is rebuilt.
func ParseSlotID(raw string) (ParsedSlotID, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	m := slotIDRe.FindStringSubmatch(s)
	if m == nil {
		return ParsedSlotID{}, fmt.Errorf("unable to parse slot id: %q", raw)
	}

	// The regexp guarantees digits, so Atoi cannot fail here.
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ParsedSlotID{}, fmt.Errorf("unable to parse slot id: %q has no valid date", raw)
	}

	return ParsedSlotID{
		Year:     year,
		Month:    time.Month(month),
		Day:      day,
		Hour:     hour,
		Resource: m[5],
	}, nil
}
