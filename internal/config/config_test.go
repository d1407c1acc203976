package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/event-scout/internal/acquire"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultSources(), cfg.Sources)
	assert.Equal(t, StoreAirtable, cfg.Store.Kind)
	assert.Equal(t, ModeBrowser, cfg.Acquire.Mode)
	assert.Equal(t, acquire.DefaultReadiness, cfg.Acquire.Readiness)
	assert.Equal(t, "info", cfg.Log.Level)

	sources := cfg.ScraperSources()
	require.Len(t, sources, 5)
	assert.Equal(t, "AI", sources[1].Category)
	assert.Equal(t, "https://www.eventbrite.co.uk/d/united-kingdom--london/ai/", sources[1].URL)
	assert.Equal(t, acquire.DefaultReadiness, sources[1].Readiness)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIRTABLE_API_KEY", "pat123")
	t.Setenv("AIRTABLE_BASE_ID", "appABC")
	t.Setenv("AIRTABLE_TABLE_NAME", "Events")
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pat123", cfg.Store.Airtable.APIKey)
	assert.Equal(t, "appABC", cfg.Store.Airtable.BaseID)
	assert.Equal(t, "Events", cfg.Store.Airtable.Table)
	assert.Equal(t, "/usr/bin/chromium", cfg.Acquire.ChromePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIRTABLE_TABLE_NAME", "From Env")

	path := filepath.Join(t.TempDir(), "event-scout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules: ./rules.yaml
store:
  kind: file
  output: ./out/events.jsonl
  airtable:
    table: From File
acquire:
  mode: http
  readiness:
    scroll_steps: 2
    settle_delay: 1s
    initial_delay: 500ms
sources:
  - rule: eventbrite
    category: AI
    url: https://www.eventbrite.co.uk/d/online/ai/
  - rule: meetup
    category: Tech
    url: https://www.meetup.com/find/?location=gb--london&categoryId=546
    readiness:
      scroll_steps: 0
      initial_delay: 2s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./rules.yaml", cfg.Rules)
	assert.Equal(t, StoreFile, cfg.Store.Kind)
	assert.Equal(t, "./out/events.jsonl", cfg.Store.Output)
	assert.Equal(t, "From Env", cfg.Store.Airtable.Table, "environment wins over the file")
	assert.Equal(t, ModeHTTP, cfg.Acquire.Mode)
	require.NoError(t, cfg.Validate())

	sources := cfg.ScraperSources()
	require.Len(t, sources, 2)
	assert.Equal(t, acquire.Readiness{ScrollSteps: 2, SettleDelay: time.Second, InitialDelay: 500 * time.Millisecond}, sources[0].Readiness)
	assert.Equal(t, acquire.Readiness{InitialDelay: 2 * time.Second}, sources[1].Readiness)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Sources: DefaultSources(),
			Store:   StoreConfig{Kind: StoreDryRun},
			Acquire: AcquireConfig{Mode: ModeBrowser, Readiness: acquire.DefaultReadiness},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no sources", func(c *Config) { c.Sources = nil }, "no sources"},
		{"missing rule", func(c *Config) { c.Sources[0].Rule = "" }, "rule is required"},
		{"missing category", func(c *Config) { c.Sources[0].Category = " " }, "category is required"},
		{"relative url", func(c *Config) { c.Sources[0].URL = "/d/london/ai/" }, "url must be absolute"},
		{"negative scroll", func(c *Config) { c.Sources[1].Readiness = &acquire.Readiness{ScrollSteps: -1} }, "scroll_steps"},
		{"excessive wait", func(c *Config) { c.Acquire.Readiness.SettleDelay = time.Hour }, "more than 10m"},
		{"unknown mode", func(c *Config) { c.Acquire.Mode = "selenium" }, "unknown acquire mode"},
		{"unknown store", func(c *Config) { c.Store.Kind = "postgres" }, "unknown store"},
		{"airtable without creds", func(c *Config) { c.Store.Kind = StoreAirtable }, "AIRTABLE_API_KEY"},
		{"file without output", func(c *Config) { c.Store.Kind = StoreFile }, "output path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
