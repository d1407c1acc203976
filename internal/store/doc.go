// Package store writes canonical event records to their destination.
//
// A Writer creates one row per call; there is no batching and no retry. Airtable is the shared
// table used in production, File appends JSON lines for offline runs and DryRun prints what would
// have been written.
package store
