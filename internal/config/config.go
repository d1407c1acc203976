package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/event-scout/internal/acquire"
	"github.com/pfrederiksen/event-scout/internal/scraper"
)

// Store kinds
const (
	StoreAirtable = "airtable"
	StoreFile     = "file"
	StoreDryRun   = "dry-run"
)

// Acquisition modes
const (
	ModeBrowser = "browser"
	ModeHTTP    = "http"
)

// SourceConfig is one page to scrape.
// Readiness overrides the acquisition default for this source when set.
type SourceConfig struct {
	Rule      string             `mapstructure:"rule" yaml:"rule"`
	Category  string             `mapstructure:"category" yaml:"category"`
	URL       string             `mapstructure:"url" yaml:"url"`
	Readiness *acquire.Readiness `mapstructure:"readiness" yaml:"readiness,omitempty"`
}

// AirtableConfig identifies the destination table
type AirtableConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"-"`
	BaseID string `mapstructure:"base_id" yaml:"base_id"`
	Table  string `mapstructure:"table" yaml:"table"`
	URL    string `mapstructure:"url" yaml:"url,omitempty"`
}

// StoreConfig selects where events are written
type StoreConfig struct {
	Kind     string         `mapstructure:"kind" yaml:"kind"`
	Output   string         `mapstructure:"output" yaml:"output,omitempty"`
	Airtable AirtableConfig `mapstructure:"airtable" yaml:"airtable"`
}

// AcquireConfig controls page acquisition
type AcquireConfig struct {
	Mode       string            `mapstructure:"mode" yaml:"mode"`
	ChromePath string            `mapstructure:"chrome_path" yaml:"chrome_path,omitempty"`
	UserAgent  string            `mapstructure:"user_agent" yaml:"user_agent,omitempty"`
	Readiness  acquire.Readiness `mapstructure:"readiness" yaml:"readiness"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Config is the complete run configuration
type Config struct {
	Sources []SourceConfig `mapstructure:"sources" yaml:"sources"`
	Rules   string         `mapstructure:"rules" yaml:"rules,omitempty"`
	Store   StoreConfig    `mapstructure:"store" yaml:"store"`
	Acquire AcquireConfig  `mapstructure:"acquire" yaml:"acquire"`
	Log     LogConfig      `mapstructure:"log" yaml:"log"`
}

// envBindings maps configuration keys to the environment variables that set them
var envBindings = map[string][]string{
	"store.kind":             {"EVENT_SCOUT_STORE"},
	"store.output":           {"EVENT_SCOUT_OUTPUT"},
	"store.airtable.api_key": {"AIRTABLE_API_KEY"},
	"store.airtable.base_id": {"AIRTABLE_BASE_ID"},
	"store.airtable.table":   {"AIRTABLE_TABLE_NAME"},
	"store.airtable.url":     {"AIRTABLE_URL"},
	"acquire.mode":           {"EVENT_SCOUT_ACQUIRE_MODE"},
	"acquire.chrome_path":    {"CHROME_PATH"},
	"rules":                  {"EVENT_SCOUT_RULES"},
	"log.level":              {"LOG_LEVEL"},
}

// DefaultSources are the Eventbrite London category pages
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Rule: "eventbrite", Category: "Product Management", URL: "https://www.eventbrite.co.uk/d/united-kingdom--london/product-management/"},
		{Rule: "eventbrite", Category: "AI", URL: "https://www.eventbrite.co.uk/d/united-kingdom--london/ai/"},
		{Rule: "eventbrite", Category: "Software Engineering", URL: "https://www.eventbrite.co.uk/d/united-kingdom--london/software-development/"},
		{Rule: "eventbrite", Category: "Business Development", URL: "https://www.eventbrite.co.uk/d/united-kingdom--london/business/"},
		{Rule: "eventbrite", Category: "Design", URL: "https://www.eventbrite.co.uk/d/united-kingdom--london/design/"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.kind", StoreAirtable)
	v.SetDefault("acquire.mode", ModeBrowser)
	v.SetDefault("acquire.readiness.scroll_steps", acquire.DefaultReadiness.ScrollSteps)
	v.SetDefault("acquire.readiness.settle_delay", acquire.DefaultReadiness.SettleDelay)
	v.SetDefault("acquire.readiness.initial_delay", acquire.DefaultReadiness.InitialDelay)
	v.SetDefault("log.level", "info")
}

// Load builds the configuration from configFile (optional), a .env file in the working
// directory (optional) and the environment.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}

	return &cfg, nil
}

// Validate checks the configuration before anything is acquired
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}

	for i, s := range c.Sources {
		if s.Rule == "" {
			return fmt.Errorf("source %d: rule is required", i)
		}
		if strings.TrimSpace(s.Category) == "" {
			return fmt.Errorf("source %d (%s): category is required", i, s.Rule)
		}
		u, err := url.Parse(s.URL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("source %d (%s): url must be absolute, got %q", i, s.Category, s.URL)
		}
		if s.Readiness != nil {
			if err := validateReadiness(*s.Readiness); err != nil {
				return fmt.Errorf("source %d (%s): %w", i, s.Category, err)
			}
		}
	}

	if err := validateReadiness(c.Acquire.Readiness); err != nil {
		return fmt.Errorf("acquire: %w", err)
	}

	switch c.Acquire.Mode {
	case ModeBrowser, ModeHTTP:
	default:
		return fmt.Errorf("unknown acquire mode %q (must be %s or %s)", c.Acquire.Mode, ModeBrowser, ModeHTTP)
	}

	switch c.Store.Kind {
	case StoreAirtable:
		a := c.Store.Airtable
		if a.APIKey == "" || a.BaseID == "" || a.Table == "" {
			return errors.New("airtable store needs AIRTABLE_API_KEY, AIRTABLE_BASE_ID and AIRTABLE_TABLE_NAME")
		}
	case StoreFile:
		if c.Store.Output == "" {
			return errors.New("file store needs an output path")
		}
	case StoreDryRun:
	default:
		return fmt.Errorf("unknown store %q (must be %s, %s or %s)", c.Store.Kind, StoreAirtable, StoreFile, StoreDryRun)
	}

	return nil
}

func validateReadiness(r acquire.Readiness) error {
	if r.ScrollSteps < 0 {
		return fmt.Errorf("scroll_steps must not be negative, got %d", r.ScrollSteps)
	}
	if r.SettleDelay < 0 || r.InitialDelay < 0 {
		return errors.New("readiness delays must not be negative")
	}
	if r.Total() > 10*time.Minute {
		return fmt.Errorf("readiness waits %s per page, more than 10m", r.Total())
	}
	return nil
}

// ScraperSources returns the configured sources with readiness defaults applied
func (c *Config) ScraperSources() []scraper.Source {
	sources := make([]scraper.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		readiness := c.Acquire.Readiness
		if s.Readiness != nil {
			readiness = *s.Readiness
		}
		sources = append(sources, scraper.Source{
			Rule:      s.Rule,
			Category:  strings.TrimSpace(s.Category),
			URL:       s.URL,
			Readiness: readiness,
		})
	}
	return sources
}
