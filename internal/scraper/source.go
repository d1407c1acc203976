package scraper

import (
	"strings"

	"github.com/pfrederiksen/event-scout/internal/acquire"
)

// Source is the query context a page was acquired for
type Source struct {
	Rule      string            `json:"rule"`
	Category  string            `json:"category"`
	URL       string            `json:"url"`
	Readiness acquire.Readiness `json:"readiness"`
}

// String identifies the source in logs
func (s Source) String() string {
	if s.Category == "" {
		return s.Rule
	}
	return s.Rule + "/" + s.Category
}

// RawListing maps rule field names to text extracted from one listing element
type RawListing map[string]string

// Get returns a field with surrounding whitespace removed, empty when absent
func (l RawListing) Get(field string) string {
	return strings.TrimSpace(l[field])
}

// Outcome is the result of extracting one listing element.
// Exactly one of Listing and Err is set.
type Outcome struct {
	Index   int
	Listing RawListing
	Err     error
}

// Skipped reports whether the listing was dropped
func (o Outcome) Skipped() bool {
	return o.Err != nil
}
