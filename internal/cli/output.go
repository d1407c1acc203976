package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/event-scout/internal/event"
	"github.com/pfrederiksen/event-scout/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

// Valid reports whether f is a known format
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatText, FormatJSON, FormatTable:
		return true
	}
	return false
}

// SourceSummary is what one source contributed
type SourceSummary struct {
	Rule     string `json:"rule"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Listings int    `json:"listings"`
	Skipped  int    `json:"skipped"`
	Events   int    `json:"events"`
	Error    string `json:"error,omitempty"`
}

// OutputResult contains data to be output
type OutputResult struct {
	RunID      string          `json:"run_id"`
	FinishedAt time.Time       `json:"finished_at"`
	Store      string          `json:"store"`
	EventCount int             `json:"event_count"`
	Filter     string          `json:"filter,omitempty"`
	Written    int             `json:"written"`
	Failed     int             `json:"failed"`
	Sources    []SourceSummary `json:"sources"`
	Events     []event.Event   `json:"events"`
	ShowEvents bool            `json:"-"`
}

// NewOutputResult summarizes a run and its upload
func NewOutputResult(runID string, result *pipeline.Result, upload pipeline.UploadReport, storeName string) *OutputResult {
	out := &OutputResult{
		RunID:      runID,
		FinishedAt: time.Now().UTC(),
		Store:      storeName,
		EventCount: len(result.Events),
		Written:    upload.Written,
		Failed:     upload.Failed,
		Sources:    make([]SourceSummary, 0, len(result.Sources)),
		Events:     make([]event.Event, len(result.Events)),
	}
	copy(out.Events, result.Events)

	for _, s := range result.Sources {
		summary := SourceSummary{
			Rule:     s.Source.Rule,
			Category: s.Source.Category,
			URL:      s.Source.URL,
			Listings: s.Listings,
			Skipped:  s.Skipped,
			Events:   s.Events,
		}
		if s.Err != nil {
			summary.Error = s.Err.Error()
		}
		out.Sources = append(out.Sources, summary)
	}

	return out
}

// HasFailures reports whether any source, listing or write failed
func (r *OutputResult) HasFailures() bool {
	if r.Failed > 0 {
		return true
	}
	for _, s := range r.Sources {
		if s.Error != "" || s.Skipped > 0 {
			return true
		}
	}
	return false
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	case FormatTable:
		return writeTable(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult) error {
	fmt.Fprintln(w)
	for _, s := range result.Sources {
		if s.Error != "" {
			fmt.Fprintf(w, "%s (%s): FAILED: %s\n", s.Category, s.Rule, s.Error)
			continue
		}
		fmt.Fprintf(w, "%s (%s): %d events", s.Category, s.Rule, s.Events)
		if s.Skipped > 0 {
			fmt.Fprintf(w, ", %d skipped", s.Skipped)
		}
		fmt.Fprintln(w)
	}

	if result.ShowEvents && len(result.Events) > 0 {
		fmt.Fprintln(w)
		for _, evt := range result.Events {
			fmt.Fprintf(w, "  [%s] %s\n", evt.Category, evt.Title)
			fmt.Fprintf(w, "       Date: %s\n", evt.DateTime)
			fmt.Fprintf(w, "       Price: %s\n", evt.Price)
			fmt.Fprintf(w, "       Type: %s\n", evt.EventType)
			fmt.Fprintf(w, "       URL: %s\n", evt.EventURL)
		}
	}

	if result.Filter != "" {
		fmt.Fprintf(w, "\nFilter: %s (%d of %d events kept)\n", result.Filter, len(result.Events), result.EventCount)
	}

	fmt.Fprintf(w, "\nTotal: %d events, %d written to %s, %d failed\n",
		result.EventCount, result.Written, result.Store, result.Failed)
	return nil
}

// writeTable outputs results as tables
func writeTable(w io.Writer, result *OutputResult) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Category", "Rule", "Listings", "Skipped", "Events", "Error"})
	for _, s := range result.Sources {
		t.AppendRow(table.Row{s.Category, s.Rule, s.Listings, s.Skipped, s.Events, s.Error})
	}
	t.AppendFooter(table.Row{"Total", "", "", "", result.EventCount, fmt.Sprintf("%d written, %d failed", result.Written, result.Failed)})
	t.Render()

	if !result.ShowEvents || len(result.Events) == 0 {
		return nil
	}

	events := table.NewWriter()
	events.SetOutputMirror(w)
	events.SetStyle(table.StyleLight)
	events.AppendHeader(table.Row{"Title", "Date & Time", "Category", "Price", "Event Type"})
	for _, evt := range result.Events {
		events.AppendRow(table.Row{evt.Title, evt.DateTime, evt.Category, evt.Price, evt.EventType})
	}
	events.Render()

	return nil
}
