package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/rules"
)

// ErrListingExtraction marks a listing that could not be extracted and was skipped
var ErrListingExtraction = errors.New("listing extraction failed")

// Extractor turns rendered page content into raw listings using a rule set
type Extractor struct {
	rules rules.Set
	log   *logger.Logger
	// field reads one field of a listing element
	field func(*goquery.Selection, rules.FieldRule) (string, bool)
}

// New creates an Extractor for the given rules. Skipped listings are logged to log,
// or to the package-level logger when log is nil.
func New(set rules.Set, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Default()
	}
	return &Extractor{rules: set, log: log, field: extractField}
}

// Extract finds every listing element of the source's rule in content.
// Skipped listings are returned as outcomes carrying ErrListingExtraction; the error return is
// reserved for problems with the page or the rule as a whole.
func (e *Extractor) Extract(content string, src Source) ([]Outcome, error) {
	rule, err := e.rules.Get(src.Rule)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	outcomes := make([]Outcome, 0)
	doc.Find(rule.Listing).Each(func(i int, sel *goquery.Selection) {
		listing, err := e.extractListing(sel, rule)
		if err != nil {
			e.log.Warn("Error scraping an event", logger.Fields{
				"source": src.String(),
				"index":  i,
				"error":  err.Error(),
			})
			outcomes = append(outcomes, Outcome{Index: i, Err: err})
			return
		}
		outcomes = append(outcomes, Outcome{Index: i, Listing: listing})
	})

	return outcomes, nil
}

// Listings returns only the successfully extracted listings of outcomes
func Listings(outcomes []Outcome) []RawListing {
	listings := make([]RawListing, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Skipped() {
			listings = append(listings, o.Listing)
		}
	}
	return listings
}

// extractListing pulls every field of the rule out of one listing element.
// Fields whose element is missing are left out of the result.
func (e *Extractor) extractListing(sel *goquery.Selection, rule rules.Rule) (listing RawListing, err error) {
	defer func() {
		if r := recover(); r != nil {
			listing = nil
			err = fmt.Errorf("%w: %v", ErrListingExtraction, r)
		}
	}()

	listing = make(RawListing)
	for _, name := range rules.KnownFields {
		f, ok := rule.Field(name)
		if !ok {
			continue
		}
		if value, found := e.field(sel, f); found {
			listing[name] = value
		}
	}

	if link := listing.Get(rules.FieldLink); link != "" {
		if _, err := url.Parse(link); err != nil {
			return nil, fmt.Errorf("%w: link %q: %v", ErrListingExtraction, link, err)
		}
	}

	return listing, nil
}

// extractField returns the text or attribute of the first element matching f
func extractField(sel *goquery.Selection, f rules.FieldRule) (string, bool) {
	match := sel.Find(f.Selector).First()
	if match.Length() == 0 {
		return "", false
	}

	if f.Attr != "" {
		value, exists := match.Attr(f.Attr)
		return strings.TrimSpace(value), exists
	}

	return collapseSpace(match.Text()), true
}

// collapseSpace joins the words of s with single spaces
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
