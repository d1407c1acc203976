package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/event-scout/internal/acquire"
	"github.com/pfrederiksen/event-scout/internal/event"
)

const sitePage = `
<html><body>
	<div class="card"><h3>Data Science Social</h3><a href="/e/ds-1">go</a><span class="when">Nov 3 2026</span></div>
	<div class="card"><h3>Agents Hack Night</h3><span class="price">£10</span><span class="when">Oct 30 2026</span></div>
</body></html>
`

// writeRunFiles writes a rules file and a config pointing at server
func writeRunFiles(t *testing.T, serverURL string, extraSources string) (configPath, outPath string) {
	t.Helper()
	dir := t.TempDir()

	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`
rules:
  - id: site
    base_url: `+serverURL+`
    listing: div.card
    defaults: {location: London, city: London}
    fields:
      title: {selector: h3}
      link: {selector: a, attr: href}
      date: {selector: span.when}
      price: {selector: span.price}
`), 0644))

	outPath = filepath.Join(dir, "events.jsonl")
	configPath = filepath.Join(dir, "event-scout.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
rules: `+rulesPath+`
store:
  kind: file
  output: `+outPath+`
acquire:
  mode: http
  readiness: {scroll_steps: 0, settle_delay: 0s, initial_delay: 0s}
sources:
  - rule: site
    category: AI
    url: `+serverURL+`/ai/
`+extraSources), 0644))

	return configPath, outPath
}

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken/" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sitePage)) //nolint:errcheck
	}))
	t.Cleanup(server.Close)
	return server
}

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec struct {
			Fields map[string]interface{} `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec.Fields)
	}
	return records
}

func TestRunBatch_FileStore(t *testing.T) {
	server := newSiteServer(t)
	configPath, outPath := writeRunFiles(t, server.URL, "")

	var stdout, stderr bytes.Buffer
	opts := &runOptions{configFile: configPath, format: "text", sortOrder: "source"}

	require.NoError(t, runBatch(context.Background(), opts, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "Scraping category: AI")
	assert.Contains(t, out, "Found 2 events.")
	assert.Contains(t, out, "Added to "+outPath+": Data Science Social")
	assert.Contains(t, out, "AI (site): 2 events")
	assert.Contains(t, out, "Total: 2 events, 2 written")

	records := readLines(t, outPath)
	require.Len(t, records, 2)
	assert.Equal(t, "Data Science Social", records[0][event.FieldTitle])
	assert.Equal(t, server.URL+"/e/ds-1", records[0][event.FieldEventURL])
	assert.Equal(t, "Free", records[0][event.FieldPrice])
	assert.Equal(t, "£10", records[1][event.FieldPrice])
	assert.Equal(t, []interface{}{"AI"}, records[1][event.FieldTags])
	assert.Equal(t, "In-Person", records[1][event.FieldEventType])

	// the run log goes to stderr as JSON lines carrying the run id
	assert.Contains(t, stderr.String(), `"run_id"`)

	// a second run appends the same records again
	require.NoError(t, runBatch(context.Background(), opts, &stdout, &stderr))
	records = readLines(t, outPath)
	require.Len(t, records, 4)
	assert.Equal(t, records[0], records[2])
}

func TestRunBatch_JSONAndStrict(t *testing.T) {
	server := newSiteServer(t)
	configPath, _ := writeRunFiles(t, server.URL, `
  - rule: site
    category: Broken
    url: `+server.URL+`/broken/
`)

	var stdout, stderr bytes.Buffer
	opts := &runOptions{configFile: configPath, format: "json", sortOrder: "date", strict: true}

	err := runBatch(context.Background(), opts, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errPartial))

	var result OutputResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result), "stdout holds only the JSON summary")

	assert.Equal(t, 2, result.EventCount)
	assert.Equal(t, 2, result.Written)
	require.Len(t, result.Sources, 2)
	assert.Empty(t, result.Sources[0].Error)
	assert.Contains(t, result.Sources[1].Error, "unexpected status code: 500")

	// sorted by date for display
	require.Len(t, result.Events, 2)
	assert.Equal(t, "Agents Hack Night", result.Events[0].Title)

	assert.Contains(t, stderr.String(), "Scraping category: Broken")
}

func TestRunBatch_DryRunOverride(t *testing.T) {
	server := newSiteServer(t)
	configPath, outPath := writeRunFiles(t, server.URL, "")

	var stdout, stderr bytes.Buffer
	opts := &runOptions{configFile: configPath, storeKind: "dry-run", format: "table", sortOrder: "title", verbose: true}

	require.NoError(t, runBatch(context.Background(), opts, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "--- Record 1 ---")
	assert.Contains(t, out, "Title: Data Science Social")
	assert.Contains(t, out, "Agents Hack Night")
	assert.Contains(t, out, "Event Type")

	_, err := os.Stat(outPath)
	assert.True(t, os.IsNotExist(err), "dry run writes nothing")
}

func TestRunBatch_BrowserNotFoundIsFatal(t *testing.T) {
	server := newSiteServer(t)
	configPath, outPath := writeRunFiles(t, server.URL, "")
	t.Setenv("PATH", t.TempDir())
	t.Setenv("CHROME_PATH", "")

	var stdout, stderr bytes.Buffer
	opts := &runOptions{configFile: configPath, mode: "browser", format: "text", sortOrder: "source"}

	err := runBatch(context.Background(), opts, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, acquire.ErrBrowserNotFound))
	assert.NotContains(t, stdout.String(), "Scraping category")

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBatch_InvalidFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := runBatch(context.Background(), &runOptions{format: "xml", sortOrder: "source"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "invalid format")

	err = runBatch(context.Background(), &runOptions{format: "text", sortOrder: "price"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "invalid sort")
}

func TestRulesCommand(t *testing.T) {
	server := newSiteServer(t)
	configPath, _ := writeRunFiles(t, server.URL, "")

	cmd := NewRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"rules", "--config", configPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "div.card")
	assert.Contains(t, stdout.String(), "title, link, date, price")
}

func TestRulesCommand_UnknownRule(t *testing.T) {
	server := newSiteServer(t)
	configPath, _ := writeRunFiles(t, server.URL, `
  - rule: elsewhere
    category: Music
    url: https://elsewhere.example.test/
`)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"rules", "--config", configPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule")
}

func TestSourcesCommand(t *testing.T) {
	t.Setenv("EVENT_SCOUT_RULES", "")

	cmd := NewRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"sources"})

	require.NoError(t, cmd.Execute())

	out := stdout.String()
	for _, category := range []string{"Product Management", "AI", "Software Engineering", "Business Development", "Design"} {
		assert.Contains(t, out, category)
	}
	assert.Equal(t, 1, strings.Count(out, "/d/united-kingdom--london/ai/"))
}

func TestRunBatch_FilterAndCalendar(t *testing.T) {
	server := newSiteServer(t)
	configPath, outPath := writeRunFiles(t, server.URL, "")
	icsPath := filepath.Join(t.TempDir(), "events.ics")

	var stdout, stderr bytes.Buffer
	opts := &runOptions{
		configFile: configPath,
		format:     "text",
		sortOrder:  "source",
		keywords:   []string{"science"},
		icsPath:    icsPath,
	}

	require.NoError(t, runBatch(context.Background(), opts, &stdout, &stderr))

	records := readLines(t, outPath)
	require.Len(t, records, 1, "only matching events are written")
	assert.Equal(t, "Data Science Social", records[0][event.FieldTitle])

	out := stdout.String()
	assert.Contains(t, out, "Found 1 events.")
	assert.Contains(t, out, "Filter: Keywords: science (1 of 2 events kept)")
	assert.Contains(t, out, "Calendar written to "+icsPath+": 1 events, 0 without a date left out")

	ics, err := os.ReadFile(icsPath)
	require.NoError(t, err)
	assert.Contains(t, string(ics), "SUMMARY:Data Science Social")
	assert.Contains(t, string(ics), "DTSTART;VALUE=DATE:20261103")
}

func TestBuildFilter(t *testing.T) {
	f, err := buildFilter(&runOptions{when: "2026-11-01..2026-11-15", eventType: "online", freeOnly: true})
	require.NoError(t, err)
	assert.Equal(t, event.Online, f.EventType)
	assert.Equal(t, 15, f.DateTo.Day())
	assert.True(t, f.FreeOnly)

	empty, err := buildFilter(&runOptions{})
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = buildFilter(&runOptions{when: "soon"})
	assert.ErrorContains(t, err, "invalid --when")

	_, err = buildFilter(&runOptions{eventType: "hybrid"})
	assert.ErrorContains(t, err, "invalid --type")
}
