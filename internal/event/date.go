package event

import (
	"regexp"
	"strings"
	"time"
)

// Layouts seen on event cards once the weekday prefix is removed
var (
	layoutsWithYear = []string{
		"Jan 2, 2006, 3:04 PM",
		"Jan 2, 2006 3:04 PM",
		"Jan 2 2006",
		"Jan 2, 2006",
		"2 Jan 2006 15:04",
		"2 Jan 2006",
		"January 2, 2006",
		"2006-01-02",
	}
	layoutsWithoutYear = []string{
		"Jan 2, 3:04 PM",
		"Jan 2 3:04 PM",
		"Jan 2",
		"2 Jan 15:04",
		"2 Jan",
	}

	weekdayPrefix = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+`)
	timezoneTail  = regexp.MustCompile(`\s+(GMT|BST|UTC|CET|CEST|EST|EDT|PST|PDT)([+-]\d{1,2})?$`)
	extraSpace    = regexp.MustCompile(`\s+`)
)

// ParseDate attempts to parse the display date of a listing into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports forms like "Sat, Oct 25, 6:00 PM", "Thursday, 30 Oct 2025 18:00" and "Oct 25".
// A date shown without a year gets the year from YearFor.
// Relative forms such as "Tomorrow at 7:00 PM" are not resolved.
func ParseDate(dateText string) time.Time {
	return parseDate(dateText, time.Now())
}

func parseDate(dateText string, now time.Time) time.Time {
	text := strings.TrimSpace(extraSpace.ReplaceAllString(dateText, " "))
	if text == "" || text == NoDate || text == Unknown {
		return time.Time{}
	}

	text = weekdayPrefix.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, " at ", " ")
	text = timezoneTail.ReplaceAllString(text, "")

	for _, layout := range layoutsWithYear {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}

	for _, layout := range layoutsWithoutYear {
		if t, err := time.Parse(layout, text); err == nil {
			return time.Date(YearFor(t.Month(), now), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		}
	}

	return time.Time{}
}

// YearFor picks the year of a month shown without one. Listings announce upcoming
// events, so a month earlier than now's month is taken to be next year's.
func YearFor(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}

// StartsAt returns the parsed DateTime of the event, zero if unknown
func (e Event) StartsAt() time.Time {
	return ParseDate(e.DateTime)
}
