package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/event-scout/internal/event"
)

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)`

var (
	sameMonthRange  = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRange = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	wholeMonth      = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
	isoRange        = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s*(?:\.\.|to)\s*(\d{4}-\d{2}-\d{2})$`)

	months = map[string]time.Month{
		"jan": time.January, "january": time.January,
		"feb": time.February, "february": time.February,
		"mar": time.March, "march": time.March,
		"apr": time.April, "april": time.April,
		"may": time.May,
		"jun": time.June, "june": time.June,
		"jul": time.July, "july": time.July,
		"aug": time.August, "august": time.August,
		"sep": time.September, "sept": time.September, "september": time.September,
		"oct": time.October, "october": time.October,
		"nov": time.November, "november": time.November,
		"dec": time.December, "december": time.December,
	}
)

// ParseDateRange parses a date range string into start and end times.
//
// Supported formats:
//   - "Nov 1-15" or "November 1-15"
//   - "Nov 20 - Dec 5"
//   - "November" (entire month)
//   - "2026-11-01..2026-11-15" or "2026-11-01 to 2026-11-15"
//
// Without a year, the year comes from event.YearFor, the same rule listing dates follow.
// Times are in UTC; the start is at 00:00:00 and the end at 23:59:59.
func ParseDateRange(input string) (*time.Time, *time.Time, error) {
	return parseDateRange(input, time.Now())
}

func parseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if m := isoRange.FindStringSubmatch(input); m != nil {
		from, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date: %s", m[1])
		}
		to, err := time.Parse("2006-01-02", m[2])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date: %s", m[2])
		}
		return bounds(from, to)
	}

	if m := sameMonthRange.FindStringSubmatch(input); m != nil {
		month := months[strings.ToLower(m[1])]
		year := event.YearFor(month, now)
		day1, err := parseDay(m[2], year, month)
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[3], year, month)
		if err != nil {
			return nil, nil, err
		}

		return bounds(
			time.Date(year, month, day1, 0, 0, 0, 0, time.UTC),
			time.Date(year, month, day2, 0, 0, 0, 0, time.UTC),
		)
	}

	if m := crossMonthRange.FindStringSubmatch(input); m != nil {
		month1 := months[strings.ToLower(m[1])]
		month2 := months[strings.ToLower(m[3])]

		year1 := event.YearFor(month1, now)
		year2 := year1
		// "Dec 20 - Jan 5" crosses the year boundary
		if month2 < month1 {
			year2++
		}

		day1, err := parseDay(m[2], year1, month1)
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[4], year2, month2)
		if err != nil {
			return nil, nil, err
		}

		return bounds(
			time.Date(year1, month1, day1, 0, 0, 0, 0, time.UTC),
			time.Date(year2, month2, day2, 0, 0, 0, 0, time.UTC),
		)
	}

	if m := wholeMonth.FindStringSubmatch(input); m != nil {
		month := months[strings.ToLower(m[1])]
		year := event.YearFor(month, now)
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		// Day 0 of the next month is the last day of this one
		to := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
		return bounds(from, to)
	}

	return nil, nil, fmt.Errorf("invalid date range %q. Use 'Nov 1-15', 'Nov 20 - Dec 5', 'November' or '2026-11-01..2026-11-15'", input)
}

// bounds widens to to the end of its day and checks ordering
func bounds(from, to time.Time) (*time.Time, *time.Time, error) {
	to = to.Add(24*time.Hour - time.Second)
	if from.After(to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return &from, &to, nil
}

// parseDay checks s is a day that exists in month of year
func parseDay(s string, year int, month time.Month) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > daysIn(year, month) {
		return 0, fmt.Errorf("invalid day: %s %s", month.String()[:3], s)
	}
	return day, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
