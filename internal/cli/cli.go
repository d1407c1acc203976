package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/event-scout/internal/acquire"
	"github.com/pfrederiksen/event-scout/internal/calendar"
	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/event"
	"github.com/pfrederiksen/event-scout/internal/filter"
	"github.com/pfrederiksen/event-scout/internal/logger"
	"github.com/pfrederiksen/event-scout/internal/pipeline"
	"github.com/pfrederiksen/event-scout/internal/rules"
	"github.com/pfrederiksen/event-scout/internal/store"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2
)

// errPartial reports a completed run with failures when --strict is set
var errPartial = errors.New("run completed with failures")

// runOptions holds the flags of the root command
type runOptions struct {
	configFile string
	rulesFile  string
	storeKind  string
	output     string
	mode       string
	format     string
	sortOrder  string
	logLevel   string
	verbose    bool
	strict     bool
	icsPath    string

	when       string
	keywords   []string
	categories []string
	cities     []string
	eventType  string
	weekends   bool
	freeOnly   bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "event-scout",
		Short: "Collect event listings from discovery sites into a shared table",
		Long: `Scrapes the configured event-discovery pages, normalizes every listing into
a canonical event record and writes one row per event to the configured store.
Runs are append-only: running twice writes every event twice.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "Rules file overriding the built-in selectors")

	cmd.Flags().StringVar(&opts.storeKind, "store", "", "Store: airtable, file or dry-run (default from config)")
	cmd.Flags().StringVar(&opts.output, "out", "", "Output path for the file store")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Acquisition: browser or http (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Summary format: text, json or table")
	cmd.Flags().StringVar(&opts.sortOrder, "sort", string(SortBySource), "Summary order: source, date or title")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Include every event in the summary")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with status 2 when a source, listing or write failed")
	cmd.Flags().StringVar(&opts.icsPath, "ics", "", "Also export the written events as an iCalendar file")

	cmd.Flags().StringVar(&opts.when, "when", "", "Only events in a date range, e.g. 'Nov 1-15', 'November' or '2026-11-01..2026-11-15'")
	cmd.Flags().StringSliceVar(&opts.keywords, "keyword", nil, "Only events whose title or description contains a keyword (repeatable)")
	cmd.Flags().StringSliceVar(&opts.categories, "category", nil, "Only events in these categories (repeatable)")
	cmd.Flags().StringSliceVar(&opts.cities, "city", nil, "Only events in these cities (repeatable)")
	cmd.Flags().StringVar(&opts.eventType, "type", "", "Only online or in-person events")
	cmd.Flags().BoolVar(&opts.weekends, "weekends", false, "Only events on a Saturday or Sunday")
	cmd.Flags().BoolVar(&opts.freeOnly, "free", false, "Only free events")

	cmd.AddCommand(newSourcesCmd(opts), newRulesCmd(opts))

	return cmd
}

// loadConfig loads the configuration and applies flag overrides
func loadConfig(opts *runOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	if opts.rulesFile != "" {
		cfg.Rules = opts.rulesFile
	}
	if opts.storeKind != "" {
		cfg.Store.Kind = opts.storeKind
	}
	if opts.output != "" {
		cfg.Store.Output = opts.output
	}
	if opts.mode != "" {
		cfg.Acquire.Mode = opts.mode
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	return cfg, nil
}

// loadRules returns the rules file named in cfg, or the built-in rules
func loadRules(cfg *config.Config) (rules.Set, error) {
	if cfg.Rules == "" {
		return rules.Default(), nil
	}
	set, err := rules.Load(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	return set, nil
}

// newAcquirer builds the page acquirer. A missing browser is fatal for the whole run.
func newAcquirer(cfg *config.Config) (acquire.Acquirer, error) {
	if cfg.Acquire.Mode == config.ModeHTTP {
		return acquire.NewHTTP(), nil
	}

	b, err := acquire.NewBrowser(acquire.BrowserOptions{
		ExecPath:  cfg.Acquire.ChromePath,
		UserAgent: cfg.Acquire.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing browser: %w", err)
	}
	return b, nil
}

// newWriter builds the store writer
func newWriter(cfg *config.Config, out io.Writer) (store.Writer, error) {
	switch cfg.Store.Kind {
	case config.StoreFile:
		return store.NewFile(cfg.Store.Output)
	case config.StoreDryRun:
		return store.NewDryRun(out), nil
	default:
		return store.NewAirtable(store.AirtableConfig{
			APIKey:  cfg.Store.Airtable.APIKey,
			BaseID:  cfg.Store.Airtable.BaseID,
			Table:   cfg.Store.Airtable.Table,
			BaseURL: cfg.Store.Airtable.URL,
		})
	}
}

// buildFilter turns the filter flags into a filter.Filter
func buildFilter(opts *runOptions) (*filter.Filter, error) {
	f := filter.NewFilter()

	if opts.when != "" {
		from, to, err := filter.ParseDateRange(opts.when)
		if err != nil {
			return nil, fmt.Errorf("invalid --when: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}

	eventType, err := filter.ParseEventType(opts.eventType)
	if err != nil {
		return nil, fmt.Errorf("invalid --type: %w", err)
	}

	f.EventType = eventType
	f.Keywords = opts.keywords
	f.Categories = opts.categories
	f.Cities = opts.cities
	f.WeekendsOnly = opts.weekends
	f.FreeOnly = opts.freeOnly

	return f, nil
}

// runBatch is the main command logic
func runBatch(ctx context.Context, opts *runOptions, stdout, stderr io.Writer) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if !format.Valid() {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'table')", opts.format)
	}
	sortOrder := SortOrder(strings.ToLower(opts.sortOrder))
	if !sortOrder.Valid() {
		return fmt.Errorf("invalid sort: %s (must be 'source', 'date' or 'title')", opts.sortOrder)
	}

	eventFilter, err := buildFilter(opts)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.New(logger.ParseLevel(cfg.Log.Level), stderr).With(logger.Fields{"run_id": runID})
	logger.SetDefault(log)
	defer log.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	set, err := loadRules(cfg)
	if err != nil {
		return err
	}

	acq, err := newAcquirer(cfg)
	if err != nil {
		return err
	}

	// JSON goes to stdout untouched, so progress moves to stderr
	progress := stdout
	if format == FormatJSON {
		progress = stderr
	}

	w, err := newWriter(cfg, progress)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := logger.NewMetrics()
	p := pipeline.New(acq, set,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics),
		pipeline.WithProgress(progress),
	)

	log.Info("Run started", logger.Fields{
		"sources": len(cfg.Sources),
		"store":   w.Name(),
		"mode":    cfg.Acquire.Mode,
	})
	started := time.Now()

	fmt.Fprintln(progress, "Scraping events...")
	result := p.Run(ctx, cfg.ScraperSources())

	events := eventFilter.Apply(result.Events)
	if !eventFilter.IsEmpty() {
		log.Info("Filter applied", logger.Fields{
			"filter": eventFilter.String(),
			"kept":   len(events),
			"total":  len(result.Events),
		})
	}

	fmt.Fprintf(progress, "Found %d events. Saving to %s...\n", len(events), w.Name())
	upload := p.Upload(ctx, w, events)

	if opts.icsPath != "" {
		export, err := calendar.WriteFile(opts.icsPath, events)
		if err != nil {
			// The store writes already happened; report and carry on
			log.Error("Calendar export failed", logger.Fields{"path": opts.icsPath}, err)
		} else {
			fmt.Fprintf(progress, "Calendar written to %s: %d events, %d without a date left out\n",
				opts.icsPath, export.Written, export.Undated)
		}
	}

	log.Info("Run finished", logger.Fields{
		"events":      len(result.Events),
		"written":     upload.Written,
		"failed":      upload.Failed,
		"duration_ms": time.Since(started).Milliseconds(),
		"metrics":     metrics.GetSnapshot(),
	})

	summary := NewOutputResult(runID, result, upload, w.Name())
	if !eventFilter.IsEmpty() {
		summary.Filter = eventFilter.String()
		summary.Events = append([]event.Event(nil), events...)
	}
	summary.ShowEvents = opts.verbose
	sortEvents(summary.Events, sortOrder)

	if err := WriteOutput(stdout, summary, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.strict && summary.HasFailures() {
		return errPartial
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, errPartial):
		os.Exit(ExitPartial)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
