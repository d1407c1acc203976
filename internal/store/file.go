package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// File appends records as JSON lines to a local file
type File struct {
	mu   sync.Mutex
	path string
}

// fileRecord mirrors the shape of an Airtable record
type fileRecord struct {
	CreatedTime string                 `json:"createdTime"`
	Fields      map[string]interface{} `json:"fields"`
}

// NewFile creates a File writer, creating the parent directory if needed
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &File{path: path}, nil
}

// Name returns the output path
func (f *File) Name() string {
	return f.path
}

// Create appends one record to the file
func (f *File) Create(_ context.Context, fields map[string]interface{}) error {
	data, err := json.Marshal(fileRecord{
		CreatedTime: time.Now().UTC().Format(time.RFC3339),
		Fields:      fields,
	})
	if err != nil {
		return fmt.Errorf("%w: encoding record: %v", ErrWrite, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrWrite, f.path, err)
	}
	defer out.Close()

	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrWrite, f.path, err)
	}

	return nil
}
