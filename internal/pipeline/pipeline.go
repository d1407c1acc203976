package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/event-scout/internal/acquire"
	"github.com/pfrederiksen/event-scout/internal/event"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/normalize"
	"github.com/pfrederiksen/event-scout/internal/rules"
	"github.com/pfrederiksen/event-scout/internal/scraper"
)

// Metric names recorded by a run
const (
	MetricSourcesScraped    = "sources.scraped"
	MetricSourcesFailed     = "sources.failed"
	MetricListingsExtracted = "listings.extracted"
	MetricListingsSkipped   = "listings.skipped"
	MetricStoreWritten      = "store.written"
	MetricStoreFailed       = "store.failed"
	MetricAcquireTiming     = "acquire"
)

// Pipeline runs sources through acquisition, extraction and normalization
type Pipeline struct {
	acquirer  acquire.Acquirer
	rules     rules.Set
	extractor *scraper.Extractor
	log       *logger.Logger
	metrics   *logger.Metrics
	progress  io.Writer
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger, defaulting to the package-level logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithMetrics sets the metrics tracker, defaulting to the package-level tracker
func WithMetrics(m *logger.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithProgress sets where progress lines are printed, io.Discard by default
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) {
		p.progress = w
	}
}

// New creates a Pipeline acquiring pages with acq and extracting them with set
func New(acq acquire.Acquirer, set rules.Set, opts ...Option) *Pipeline {
	p := &Pipeline{
		acquirer: acq,
		rules:    set,
		log:      logger.Default(),
		metrics:  logger.DefaultMetrics(),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.extractor = scraper.New(set, p.log)
	return p
}

// SourceReport describes what one source contributed to a run
type SourceReport struct {
	Source   scraper.Source `json:"source"`
	Listings int            `json:"listings"`
	Skipped  int            `json:"skipped"`
	Events   int            `json:"events"`
	Duration time.Duration  `json:"duration"`
	Err      error          `json:"-"`
}

// Failed reports whether the source contributed nothing because it could not be processed
func (r SourceReport) Failed() bool {
	return r.Err != nil
}

// Result is the outcome of a run
type Result struct {
	Events  []event.Event  `json:"events"`
	Sources []SourceReport `json:"sources"`
}

// FailedSources counts sources that could not be processed
func (r *Result) FailedSources() int {
	n := 0
	for _, s := range r.Sources {
		if s.Failed() {
			n++
		}
	}
	return n
}

// SkippedListings counts listings dropped across all sources
func (r *Result) SkippedListings() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Skipped
	}
	return n
}

// Run processes sources in order and returns every normalized event, in source order then
// listing order. Failures are recorded in the per-source reports.
func (p *Pipeline) Run(ctx context.Context, sources []scraper.Source) *Result {
	result := &Result{
		Events:  make([]event.Event, 0),
		Sources: make([]SourceReport, 0, len(sources)),
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			result.Sources = append(result.Sources, SourceReport{Source: src, Err: err})
			continue
		}

		events, report := p.runSource(ctx, src)
		result.Events = append(result.Events, events...)
		result.Sources = append(result.Sources, report)
	}

	return result
}

// runSource acquires, extracts and normalizes a single source
func (p *Pipeline) runSource(ctx context.Context, src scraper.Source) ([]event.Event, SourceReport) {
	report := SourceReport{Source: src}
	fields := logger.Fields{
		"source":   src.Rule,
		"category": src.Category,
		"url":      src.URL,
	}

	fmt.Fprintf(p.progress, "Scraping category: %s → %s\n", src.Category, src.URL)

	rule, err := p.rules.Get(src.Rule)
	if err != nil {
		return nil, p.fail(report, fields, err)
	}

	start := time.Now()
	content, err := p.acquirer.Acquire(ctx, src.URL, src.Readiness)
	report.Duration = time.Since(start)
	p.metrics.RecordTiming(MetricAcquireTiming, report.Duration)
	if err != nil {
		return nil, p.fail(report, fields, err)
	}

	outcomes, err := p.extractor.Extract(content, src)
	if err != nil {
		return nil, p.fail(report, fields, err)
	}

	events := make([]event.Event, 0, len(outcomes))
	for _, o := range outcomes {
		report.Listings++
		if o.Skipped() {
			report.Skipped++
			continue
		}
		events = append(events, normalize.Normalize(o.Listing, src, rule))
	}
	report.Events = len(events)

	p.metrics.IncrCounter(MetricSourcesScraped)
	p.metrics.AddCounter(MetricListingsExtracted, int64(report.Events))
	p.metrics.AddCounter(MetricListingsSkipped, int64(report.Skipped))

	fields["listings"] = report.Listings
	fields["skipped"] = report.Skipped
	fields["events"] = report.Events
	fields["duration_ms"] = report.Duration.Milliseconds()
	p.log.Info("Source scraped", fields)

	return events, report
}

func (p *Pipeline) fail(report SourceReport, fields logger.Fields, err error) SourceReport {
	report.Err = err
	p.metrics.IncrCounter(MetricSourcesFailed)
	p.log.Error("Source failed", fields, err)
	fmt.Fprintf(p.progress, "Skipping %s: %v\n", report.Source, err)
	return report
}
