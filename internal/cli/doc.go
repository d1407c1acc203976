// Package cli implements the command-line interface for event-scout.
//
// The root command runs the ingestion batch: it loads the configuration and rules, acquires and
// extracts every configured source, writes the events to the configured store and reports what
// happened as text, JSON or a table. The sources and rules subcommands show the configured
// sources and validate rule files without scraping anything.
package cli
