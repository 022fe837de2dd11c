package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSlotID(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  ParsedSlotID
		expectErr bool
	}{
		{
			name:     "Sauna slot",
			raw:      "2024-06-05-10",
			expected: ParsedSlotID{Year: 2024, Month: time.June, Day: 5, Hour: 10},
		},
		{
			name:     "Morning hour is not padded",
			raw:      "2024-06-05-8",
			expected: ParsedSlotID{Year: 2024, Month: time.June, Day: 5, Hour: 8},
		},
		{
			name:     "Washer slot",
			raw:      "2024-06-05-10-washer",
			expected: ParsedSlotID{Year: 2024, Month: time.June, Day: 5, Hour: 10, Resource: "washer"},
		},
		{
			name:     "Dryer slot with padding and case",
			raw:      "  2024-12-31-21-DRYER ",
			expected: ParsedSlotID{Year: 2024, Month: time.December, Day: 31, Hour: 21, Resource: "dryer"},
		},
		{
			name:      "Missing hour",
			raw:       "2024-06-05",
			expectErr: true,
		},
		{
			name:      "Month out of range",
			raw:       "2024-13-05-10",
			expectErr: true,
		},
		{
			name:      "Day zero",
			raw:       "2024-06-00-10",
			expectErr: true,
		},
		{
			name:      "Garbage",
			raw:       "tomorrow-morning",
			expectErr: true,
		},
		{
			name:      "Empty",
			raw:       "",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseSlotID(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}
