// Package filter narrows a run's events before they are written.
//
// Criteria combine with AND; within one criterion any listed value may match:
//   - Date range (from/to, inclusive)
//   - Keywords (case-insensitive substring of the title or description)
//   - Cities and categories (case-insensitive)
//   - Event type (Online or In-Person)
//   - Weekends only (Saturday/Sunday)
//   - Free only
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Keywords = []string{"llm"}
//
//	kept := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/event-scout/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Keywords match against title and description
	Keywords   []string        `json:"keywords,omitempty"`
	Cities     []string        `json:"cities,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	EventType  event.EventType `json:"event_type,omitempty"`

	WeekendsOnly bool `json:"weekends_only,omitempty"`
	FreeOnly     bool `json:"free_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Keywords) == 0 &&
		len(f.Cities) == 0 &&
		len(f.Categories) == 0 &&
		f.EventType == "" &&
		!f.WeekendsOnly &&
		!f.FreeOnly)
}

// Matches checks if an event matches all active filter criteria.
//
// Date criteria only exclude events whose date could be parsed. An event showing
// "No Date" or a relative date such as "Tomorrow" is kept.
func (f *Filter) Matches(evt event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if starts := evt.StartsAt(); !starts.IsZero() {
		if f.DateFrom != nil && starts.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && starts.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly {
			if day := starts.Weekday(); day != time.Saturday && day != time.Sunday {
				return false
			}
		}
	}

	if len(f.Keywords) > 0 && !containsAny(evt.Title+"\n"+evt.Description, f.Keywords) {
		return false
	}

	if len(f.Cities) > 0 && !containsAny(evt.City, f.Cities) {
		return false
	}

	if len(f.Categories) > 0 && !equalsAny(evt.Category, f.Categories) {
		return false
	}

	if f.EventType != "" && !strings.EqualFold(string(evt.EventType), string(f.EventType)) {
		return false
	}

	if f.FreeOnly && !strings.EqualFold(evt.Price, event.Free) {
		return false
	}

	return true
}

// Apply returns the events matching f, in their original order.
// An empty filter returns events unchanged.
func (f *Filter) Apply(events []event.Event) []event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Nov 1, 2026 | To: Nov 15, 2026 | Keywords: llm | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}
	if len(f.Cities) > 0 {
		parts = append(parts, fmt.Sprintf("Cities: %s", strings.Join(f.Cities, ", ")))
	}
	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("Categories: %s", strings.Join(f.Categories, ", ")))
	}
	if f.EventType != "" {
		parts = append(parts, fmt.Sprintf("Type: %s", f.EventType))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}
	if f.FreeOnly {
		parts = append(parts, "Free only")
	}

	return strings.Join(parts, " | ")
}

// ParseEventType accepts "online", "in-person" or "inperson" in any case
func ParseEventType(s string) (event.EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "online":
		return event.Online, nil
	case "in-person", "inperson", "in person":
		return event.InPerson, nil
	}
	return "", fmt.Errorf("invalid event type %q (must be online or in-person)", s)
}

func containsAny(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if n = strings.TrimSpace(n); n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func equalsAny(s string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
