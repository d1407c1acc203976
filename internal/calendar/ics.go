// Package calendar exports events as an iCalendar (.ics) feed.
package calendar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/event-scout/internal/event"
)

// DefaultDuration is the length given to events that show a start time
const DefaultDuration = 2 * time.Hour

// Export is the outcome of writing a feed
type Export struct {
	Written int
	// Undated counts events left out because their date could not be parsed
	Undated int
}

// GenerateICS renders events into one VCALENDAR. Events without a parseable
// date are left out. Times are floating local times, as shown on the listing.
func GenerateICS(events []event.Event, now time.Time) (string, Export) {
	var ics strings.Builder
	var export Export

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//event-scout//event-scout//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	stamp := formatICSTime(now)
	for _, evt := range events {
		starts := evt.StartsAt()
		if starts.IsZero() {
			export.Undated++
			continue
		}
		writeEvent(&ics, evt, starts, stamp)
		export.Written++
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String(), export
}

func writeEvent(ics *strings.Builder, evt event.Event, starts time.Time, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	id := evt.ID
	if id == "" {
		id = event.GenerateID(evt.Source, evt.EventURL, evt.Title)
	}
	fmt.Fprintf(ics, "UID:%s@event-scout\r\n", id)
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", stamp)

	// Listings without a time of day become all-day events
	if starts.Hour() == 0 && starts.Minute() == 0 {
		fmt.Fprintf(ics, "DTSTART;VALUE=DATE:%s\r\n", starts.Format("20060102"))
		fmt.Fprintf(ics, "DTEND;VALUE=DATE:%s\r\n", starts.AddDate(0, 0, 1).Format("20060102"))
	} else {
		fmt.Fprintf(ics, "DTSTART:%s\r\n", formatLocalTime(starts))
		fmt.Fprintf(ics, "DTEND:%s\r\n", formatLocalTime(starts.Add(DefaultDuration)))
	}

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(evt.Title))

	description := fmt.Sprintf("Date: %s\nPrice: %s\nType: %s", evt.DateTime, evt.Price, evt.EventType)
	if evt.Description != "" && evt.Description != event.NoDescription {
		description = evt.Description + "\n\n" + description
	}
	fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escapeICS(description))

	location := evt.Location
	if evt.City != "" && evt.City != event.Unknown && !strings.Contains(location, evt.City) {
		location = fmt.Sprintf("%s, %s", location, evt.City)
	}
	fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(location))

	if evt.Category != "" && evt.Category != event.Unknown {
		fmt.Fprintf(ics, "CATEGORIES:%s\r\n", escapeICS(evt.Category))
	}
	if evt.EventURL != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", evt.EventURL)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// Write renders events to w
func Write(w io.Writer, events []event.Event) (Export, error) {
	ics, export := GenerateICS(events, time.Now())
	if _, err := io.WriteString(w, ics); err != nil {
		return Export{}, fmt.Errorf("writing calendar: %w", err)
	}
	return export, nil
}

// WriteFile renders events to path, replacing any previous feed
func WriteFile(path string, events []event.Event) (Export, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Export{}, fmt.Errorf("creating calendar directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return Export{}, fmt.Errorf("creating calendar: %w", err)
	}

	return writeAndClose(f, events)
}

// writeAndClose renders events to wc and closes it, reporting a failed close
// when the write itself succeeded
func writeAndClose(wc io.WriteCloser, events []event.Event) (Export, error) {
	export, err := Write(wc, events)
	if cerr := wc.Close(); cerr != nil && err == nil {
		return Export{}, fmt.Errorf("closing calendar: %w", cerr)
	}
	return export, err
}

// formatICSTime formats a time.Time as a UTC iCalendar datetime
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatLocalTime formats a floating iCalendar datetime
func formatLocalTime(t time.Time) string {
	return t.Format("20060102T150405")
}

// escapeICS escapes special characters for iCalendar format (RFC 5545)
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
