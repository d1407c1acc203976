package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/event-scout/internal/config"
	"github.com/pfrederiksen/event-scout/internal/rules"
)

// newSourcesCmd lists the configured sources
func newSourcesCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			renderSources(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

// newRulesCmd validates and lists the extraction rules
func newRulesCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Validate and list the extraction rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			set, err := loadRules(cfg)
			if err != nil {
				return err
			}
			renderRules(cmd.OutOrStdout(), set)

			// Sources pointing at a missing rule would fail at run time
			for _, s := range cfg.Sources {
				if _, err := set.Get(s.Rule); err != nil {
					return fmt.Errorf("source %q: %w", s.Category, err)
				}
			}
			return nil
		},
	}
}

// renderSources prints one row per configured source
func renderSources(w io.Writer, cfg *config.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Category", "Rule", "URL", "Scrolls", "Wait"})

	for _, s := range cfg.ScraperSources() {
		t.AppendRow(table.Row{s.Category, s.Rule, s.URL, s.Readiness.ScrollSteps, s.Readiness.Total()})
	}

	t.Render()
}

// renderRules prints one row per rule
func renderRules(w io.Writer, set rules.Set) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Base URL", "Listing", "Fields", "Online Marker"})

	for _, id := range set.IDs() {
		r := set[id]
		fields := make([]string, 0, len(rules.KnownFields))
		for _, name := range rules.KnownFields {
			if _, ok := r.Field(name); ok {
				fields = append(fields, name)
			}
		}
		t.AppendRow(table.Row{r.ID, r.BaseURL, r.Listing, strings.Join(fields, ", "), r.Marker()})
	}

	t.Render()
}
