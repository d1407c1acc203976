package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	AirtableURL     = "https://api.airtable.com"
	airtableTimeout = 15 * time.Second
)

// AirtableConfig identifies the table records are written to
type AirtableConfig struct {
	APIKey  string
	BaseID  string
	Table   string
	BaseURL string // defaults to AirtableURL
}

// Airtable writes records through the Airtable REST API
type Airtable struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewAirtable creates an Airtable writer
func NewAirtable(cfg AirtableConfig) (*Airtable, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("airtable API key is required")
	}
	if cfg.BaseID == "" {
		return nil, fmt.Errorf("airtable base ID is required")
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("airtable table name is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = AirtableURL
	}

	return &Airtable{
		apiKey:   cfg.APIKey,
		endpoint: fmt.Sprintf("%s/v0/%s/%s", baseURL, url.PathEscape(cfg.BaseID), url.PathEscape(cfg.Table)),
		httpClient: &http.Client{
			Timeout: airtableTimeout,
		},
	}, nil
}

// Name returns "Airtable"
func (a *Airtable) Name() string {
	return "Airtable"
}

// Create posts one record to the table
func (a *Airtable) Create(ctx context.Context, fields map[string]interface{}) error {
	payload := map[string]interface{}{
		"fields":   fields,
		"typecast": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshaling record: %v", ErrWrite, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrWrite, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending request: %v", ErrWrite, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrWrite, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: airtable API error (status %d): %s", ErrWrite, resp.StatusCode, errorMessage(body))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return fmt.Errorf("%w: parsing response: %v", ErrWrite, err)
	}
	if created.ID == "" {
		return fmt.Errorf("%w: airtable returned no record id", ErrWrite)
	}

	return nil
}

// errorMessage extracts the message from an Airtable error body.
// The error object is either {"type","message"} or a bare string.
func errorMessage(body []byte) string {
	var structured struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Type != "" {
		if structured.Error.Message == "" {
			return structured.Error.Type
		}
		return structured.Error.Type + ": " + structured.Error.Message
	}

	var bare struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &bare); err == nil && bare.Error != "" {
		return bare.Error
	}

	return string(body)
}
