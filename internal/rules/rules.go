package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// Field names a rule may provide selectors for
const (
	FieldTitle       = "title"
	FieldDate        = "date"
	FieldLink        = "link"
	FieldPrice       = "price"
	FieldLocation    = "location"
	FieldImage       = "image"
	FieldDescription = "description"
)

// KnownFields lists the raw fields in extraction order
var KnownFields = []string{
	FieldTitle,
	FieldLink,
	FieldDate,
	FieldLocation,
	FieldPrice,
	FieldImage,
	FieldDescription,
}

// DefaultOnlineMarker is the URL substring marking a source as online-only
const DefaultOnlineMarker = "online"

// ErrUnknownRule is returned when a source references a rule that is not in the set
var ErrUnknownRule = errors.New("unknown rule")

//go:embed rules.yaml
var defaultRules []byte

// FieldRule selects one field inside a listing element.
// The field value is the element's text, or the named attribute when Attr is set.
type FieldRule struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`
}

// Defaults are per-source values for fields the site does not expose per listing
type Defaults struct {
	Location string `yaml:"location,omitempty"`
	City     string `yaml:"city,omitempty"`
}

// Rule describes how listings are laid out on one source site
type Rule struct {
	ID           string               `yaml:"id"`
	BaseURL      string               `yaml:"base_url"`
	Listing      string               `yaml:"listing"`
	OnlineMarker string               `yaml:"online_marker,omitempty"`
	Defaults     Defaults             `yaml:"defaults,omitempty"`
	Fields       map[string]FieldRule `yaml:"fields"`
}

// Marker returns the online marker, falling back to DefaultOnlineMarker
func (r Rule) Marker() string {
	if r.OnlineMarker == "" {
		return DefaultOnlineMarker
	}
	return r.OnlineMarker
}

// Field returns the selector for a field and whether the rule defines one
func (r Rule) Field(name string) (FieldRule, bool) {
	f, ok := r.Fields[name]
	if !ok || f.Selector == "" {
		return FieldRule{}, false
	}
	return f, true
}

// Validate checks that the rule can be used for extraction
func (r Rule) Validate() error {
	if r.ID == "" {
		return errors.New("rule id is required")
	}
	if r.Listing == "" {
		return fmt.Errorf("rule %s: listing selector is required", r.ID)
	}

	base, err := url.Parse(r.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("rule %s: base_url must be an absolute URL, got %q", r.ID, r.BaseURL)
	}

	if _, err := cascadia.Compile(r.Listing); err != nil {
		return fmt.Errorf("rule %s: listing selector: %w", r.ID, err)
	}

	for name, f := range r.Fields {
		if !isKnownField(name) {
			return fmt.Errorf("rule %s: unknown field %q", r.ID, name)
		}
		if f.Selector == "" {
			continue
		}
		if _, err := cascadia.Compile(f.Selector); err != nil {
			return fmt.Errorf("rule %s: %s selector: %w", r.ID, name, err)
		}
	}

	return nil
}

func isKnownField(name string) bool {
	for _, f := range KnownFields {
		if f == name {
			return true
		}
	}
	return false
}

// Set maps source identifiers to their rules
type Set map[string]Rule

type document struct {
	Rules []Rule `yaml:"rules"`
}

// Parse decodes and validates a YAML rule document
func Parse(data []byte) (Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	set := make(Set, len(doc.Rules))
	for _, r := range doc.Rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := set[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		set[r.ID] = r
	}

	if len(set) == 0 {
		return nil, errors.New("no rules defined")
	}

	return set, nil
}

// Load reads a rule document from disk
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded rule set
func Default() Set {
	set, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return set
}

// Get returns the rule for a source identifier
func (s Set) Get(id string) (Rule, error) {
	r, ok := s[id]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	return r, nil
}

// IDs returns the rule identifiers in sorted order
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
