// Package status tracks the run state of the sync jobs.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// StatusPersistence stores job statuses between restarts
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveAll replaces the stored statuses
	SaveAll(ctx context.Context, statuses map[string]*JobStatus) error

	// LoadAll returns the stored statuses, or an empty map on first run
	LoadAll(ctx context.Context) (map[string]*JobStatus, error)
}

// fileStatusPersistence keeps every status in one JSON file
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a file-based status persistence rooted at basePath
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

// SaveAll writes the statuses to a temporary file and renames it into place
func (f *fileStatusPersistence) SaveAll(_ context.Context, statuses map[string]*JobStatus) error {
	if err := os.MkdirAll(f.basePath, 0750); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data: %w", err)
	}

	filePath := filepath.Join(f.basePath, StatusFileName)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file: %w", err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file: %w", err)
	}

	return nil
}

// LoadAll reads the status file
func (f *fileStatusPersistence) LoadAll(_ context.Context) (map[string]*JobStatus, error) {
	filePath := filepath.Join(f.basePath, StatusFileName)

	// #nosec G304 -- filePath is built from the configured status directory
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*JobStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	statuses := map[string]*JobStatus{}
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data: %w", err)
	}
	return statuses, nil
}
