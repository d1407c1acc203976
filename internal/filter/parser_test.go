package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		input    string
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"same month short", "Nov 1-15", day(2026, time.November, 1), day(2026, time.November, 15)},
		{"same month long", "November 1 - 15", day(2026, time.November, 1), day(2026, time.November, 15)},
		{"current month", "Oct 19-31", day(2026, time.October, 19), day(2026, time.October, 31)},
		{"cross month", "Nov 20 - Dec 5", day(2026, time.November, 20), day(2026, time.December, 5)},
		{"cross year", "Dec 25 - Jan 5", day(2026, time.December, 25), day(2027, time.January, 5)},
		{"past month rolls to next year", "March", day(2027, time.March, 1), day(2027, time.March, 31)},
		{"february next year", "feb", day(2027, time.February, 1), day(2027, time.February, 28)},
		{"iso dots", "2026-11-01..2026-11-15", day(2026, time.November, 1), day(2026, time.November, 15)},
		{"iso to", "2026-11-01 to 2026-11-01", day(2026, time.November, 1), day(2026, time.November, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := parseDateRange(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, *from)
			assert.Equal(t, tt.wantTo.Add(24*time.Hour-time.Second), *to, "end of day is inclusive")
		})
	}
}

func TestParseDateRange_Leap(t *testing.T) {
	now := time.Date(2028, time.January, 10, 0, 0, 0, 0, time.UTC)
	_, to, err := parseDateRange("Feb", now)
	require.NoError(t, err)
	assert.Equal(t, 29, to.Day())
}

func TestParseDateRange_Errors(t *testing.T) {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"",
		"   ",
		"Nov 15-1",
		"Nov 0-3",
		"Nov 1-32",
		"Nov 1-31",
		"Nov 31 - Dec 5",
		"Dec 20 - Feb 30",
		"Smarch 1-3",
		"next week",
		"2026-11-15..2026-11-01",
		"2026-13-01..2026-13-05",
	} {
		t.Run(input, func(t *testing.T) {
			_, _, err := parseDateRange(input, now)
			assert.Error(t, err)
		})
	}
}

func TestParseDateRange_MonthLength(t *testing.T) {
	// 2028 is a leap year
	now := time.Date(2028, time.January, 10, 0, 0, 0, 0, time.UTC)

	_, to, err := parseDateRange("Feb 1-29", now)
	require.NoError(t, err)
	assert.Equal(t, 29, to.Day())

	_, _, err = parseDateRange("Feb 1-30", now)
	assert.ErrorContains(t, err, "invalid day: Feb 30")

	_, _, err = parseDateRange("Feb 1-29", time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
