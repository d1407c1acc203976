package store

import (
	"context"
	"errors"
)

// ErrWrite marks a record the destination rejected or never received
var ErrWrite = errors.New("store write failed")

// Writer creates records keyed by column name
type Writer interface {
	// Name identifies the destination in progress output
	Name() string
	// Create writes one record
	Create(ctx context.Context, fields map[string]interface{}) error
}
