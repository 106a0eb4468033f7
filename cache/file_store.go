package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps one JSON file per cache entry in a directory
type FileStore struct {
	directory string
}

func NewFileStore(directory string) *FileStore {
	return &FileStore{directory: directory}
}

// Load loads cache entry from file. A missing file is a miss, not an error.
func (s *FileStore) Load(_ context.Context, key string) (*Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// Save saves cache entry to file. Expiry is checked on read from the entry timestamp.
func (s *FileStore) Save(_ context.Context, key string, entry Entry, _ time.Duration) error {
	// Ensure directory exists
	if err := os.MkdirAll(s.directory, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", s.directory, err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(key), data, 0644)
}

func (s *FileStore) Clear(_ context.Context) error {
	return os.RemoveAll(s.directory)
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.directory, fmt.Sprintf("schema_%s.json", key))
}
