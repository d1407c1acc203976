// Package scraper extracts raw listings from rendered event-discovery pages.
//
// An Extractor looks up the structural rule for a source, finds every listing element on the
// page and pulls each field out of it independently. A missing sub-element leaves that field
// empty for the normalizer to default. A listing that fails as a whole is reported as a skipped
// Outcome and the remaining listings are still extracted.
package scraper
