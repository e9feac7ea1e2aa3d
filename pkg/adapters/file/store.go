// Package file provides a ports.HistoryStore backed by JSON files.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
)

// Store implements ports.HistoryStore using the local filesystem.
// It stores one JSON file per page in a configured directory.
type Store struct {
	BasePath string
}

var _ ports.HistoryStore = (*Store)(nil)

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".concord/history".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".concord", "history")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(pageID string) (string, error) {
	if pageID == "" {
		return "", fmt.Errorf("pageID cannot be empty")
	}
	if strings.ContainsAny(pageID, `/\`) || pageID == "." || pageID == ".." {
		return "", fmt.Errorf("invalid pageID %q", pageID)
	}
	return filepath.Join(s.BasePath, pageID+".json"), nil
}

// Save persists the history to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, pageID string, history *domain.History) error {
	destPath, err := s.path(pageID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+pageID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing history file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the history of a page.
func (s *Store) Load(ctx context.Context, pageID string) (*domain.History, error) {
	filePath, err := s.path(pageID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var history domain.History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &history, nil
}

// Delete removes the history file. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, pageID string) error {
	filePath, err := s.path(pageID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history file: %w", err)
	}
	return nil
}

// List returns the recorded page IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
