// Package event provides the canonical event record written to the shared store.
//
// Every Event carries a value for every field: either text extracted from a listing or one of the
// documented sentinels (NoTitle, NoDate, Free, ...). Fields returns the record keyed by the
// store's column names, which are part of the contract with the remote table.
package event
