// Package normalize maps raw listings onto the canonical event record.
//
// Normalize is pure: it only reads its arguments. Every field of the result is populated, either
// from the listing or with the documented default, so absent markup never reaches the store as a
// missing column.
package normalize

import (
	"net/url"
	"strings"

	"github.com/pfrederiksen/event-scout/internal/event"
	"github.com/pfrederiksen/event-scout/internal/rules"
	"github.com/pfrederiksen/event-scout/internal/scraper"
)

// Normalize builds the Event for one raw listing of src
func Normalize(raw scraper.RawListing, src scraper.Source, rule rules.Rule) event.Event {
	category := strings.TrimSpace(src.Category)

	evt := event.Event{
		Source:      rule.ID,
		Title:       orDefault(raw.Get(rules.FieldTitle), event.NoTitle),
		DateTime:    orDefault(raw.Get(rules.FieldDate), event.NoDate),
		Location:    orDefault(raw.Get(rules.FieldLocation), rule.Defaults.Location, event.Unknown),
		City:        orDefault(rule.Defaults.City, event.Unknown),
		EventURL:    ResolveURL(rule.BaseURL, raw.Get(rules.FieldLink), src.URL),
		Description: orDefault(raw.Get(rules.FieldDescription), event.NoDescription),
		Category:    orDefault(category, event.Unknown),
		Price:       orDefault(raw.Get(rules.FieldPrice), event.Free),
		EventType:   DeriveEventType(src.URL, rule.Marker()),
		Tags:        []string{},
		ImageURL:    orDefault(resolveImage(rule.BaseURL, raw.Get(rules.FieldImage)), event.NoImage),
	}

	// Category comes from the query, not the listing, so it seeds the tags
	if category != "" {
		evt.Tags = []string{category}
	}

	evt.ID = event.GenerateID(evt.Source, evt.EventURL, evt.Title)

	return evt
}

// DeriveEventType classifies a source by its query URL.
// Every listing of a source shares the result, even when the page mixes modalities.
func DeriveEventType(sourceURL, marker string) event.EventType {
	if marker == "" {
		marker = rules.DefaultOnlineMarker
	}
	if strings.Contains(sourceURL, marker) {
		return event.Online
	}
	return event.InPerson
}

// ResolveURL makes ref absolute against base.
// Absolute refs are returned unchanged, so resolving twice yields the same URL.
// An empty or unparseable ref falls back to fallback, the page the listing was found on.
func ResolveURL(base, ref, fallback string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fallback
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return fallback
	}
	if refURL.IsAbs() {
		return ref
	}

	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return fallback
	}

	return baseURL.ResolveReference(refURL).String()
}

// resolveImage resolves a relative image source, leaving data URIs alone
func resolveImage(base, src string) string {
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	return ResolveURL(base, src, "")
}

// orDefault returns the first non-blank value
func orDefault(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
