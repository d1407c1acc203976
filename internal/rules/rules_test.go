package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	set := Default()

	assert.Equal(t, []string{"eventbrite", "meetup"}, set.IDs())

	eb, err := set.Get("eventbrite")
	require.NoError(t, err)
	assert.Equal(t, "https://www.eventbrite.co.uk", eb.BaseURL)
	assert.Equal(t, "London", eb.Defaults.Location)
	assert.Equal(t, "online", eb.Marker())

	link, ok := eb.Field(FieldLink)
	require.True(t, ok)
	assert.Equal(t, "href", link.Attr)

	_, ok = eb.Field(FieldImage)
	assert.False(t, ok, "eventbrite cards have no image selector")
}

func TestGet_Unknown(t *testing.T) {
	_, err := Default().Get("ticketmaster")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRule))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid",
			yaml: `
rules:
  - id: example
    base_url: https://example.test
    listing: div.card
    fields:
      title: {selector: h3}
`,
		},
		{
			name:    "malformed yaml",
			yaml:    "rules: [",
			wantErr: "parsing rules",
		},
		{
			name:    "empty document",
			yaml:    "rules: []",
			wantErr: "no rules defined",
		},
		{
			name: "missing listing",
			yaml: `
rules:
  - id: example
    base_url: https://example.test
`,
			wantErr: "listing selector is required",
		},
		{
			name: "relative base url",
			yaml: `
rules:
  - id: example
    base_url: /events
    listing: div.card
`,
			wantErr: "base_url must be an absolute URL",
		},
		{
			name: "bad selector",
			yaml: `
rules:
  - id: example
    base_url: https://example.test
    listing: "div[[["
`,
			wantErr: "listing selector",
		},
		{
			name: "unknown field",
			yaml: `
rules:
  - id: example
    base_url: https://example.test
    listing: div.card
    fields:
      organiser: {selector: span}
`,
			wantErr: `unknown field "organiser"`,
		},
		{
			name: "duplicate id",
			yaml: `
rules:
  - {id: example, base_url: "https://example.test", listing: div.card}
  - {id: example, base_url: "https://example.test", listing: li}
`,
			wantErr: "duplicate rule id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, set, 1)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - id: example
    base_url: https://example.test
    listing: article.event
    online_marker: virtual
`), 0644))

	set, err := Load(path)
	require.NoError(t, err)

	r, err := set.Get("example")
	require.NoError(t, err)
	assert.Equal(t, "virtual", r.Marker())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
