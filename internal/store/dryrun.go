package store

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// DryRun prints the records that would be written
type DryRun struct {
	out   io.Writer
	count int
}

// NewDryRun creates a dry-run writer printing to out
func NewDryRun(out io.Writer) *DryRun {
	return &DryRun{out: out}
}

// Name returns "dry run"
func (d *DryRun) Name() string {
	return "dry run"
}

// Create prints the record with its columns in sorted order
func (d *DryRun) Create(_ context.Context, fields map[string]interface{}) error {
	d.count++

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(d.out, "--- Record %d ---\n", d.count)
	for _, name := range names {
		fmt.Fprintf(d.out, "%s: %v\n", name, fields[name])
	}
	fmt.Fprintln(d.out)

	return nil
}
