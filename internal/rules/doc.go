// Package rules holds the per-source structural selectors used to find listings on a page.
//
// Selectors track third-party markup and go stale whenever a site changes its class names, so
// they live in YAML rather than in code. A Set maps a source identifier to its Rule; the
// embedded rules.yaml is the default Set and a replacement file can be supplied at run time.
package rules
