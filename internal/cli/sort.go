package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/event-scout/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortBySource SortOrder = "source"
	SortByDate   SortOrder = "date"
	SortByTitle  SortOrder = "title"
)

// Valid reports whether s is a known sort order
func (s SortOrder) Valid() bool {
	switch s {
	case SortBySource, SortByDate, SortByTitle:
		return true
	}
	return false
}

// sortEvents sorts events for display. SortBySource keeps the scrape order.
func sortEvents(events []event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Title) < strings.ToLower(events[j].Title)
		})
	}
}

// compareByDate orders dated events first, earliest first, then undated events by title
func compareByDate(a, b event.Event) bool {
	ta, tb := a.StartsAt(), b.StartsAt()

	switch {
	case !ta.IsZero() && !tb.IsZero():
		return ta.Before(tb)
	case ta.IsZero() != tb.IsZero():
		return !ta.IsZero()
	default:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	}
}
