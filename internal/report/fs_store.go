package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Filesystem persistence for comparison reports, one directory per job:
// <baseDir>/reports/<jobID>/report.json. Writes go through a temp file and
// an atomic rename, so no locking is needed and readers never observe a
// half-written report.

// ErrNotFound is returned when a requested report does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing report.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "report not found: " + e.JobID
	}
	return "report not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// FSStore persists reports under a base directory.
type FSStore struct {
	baseDir string
}

// NewFSStore creates the store, creating baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) jobDir(jobID string) string {
	return filepath.Join(fs.baseDir, "reports", jobID)
}

func (fs *FSStore) reportPath(jobID string) string {
	return filepath.Join(fs.jobDir(jobID), "report.json")
}

// Save atomically writes the report for the given job, overwriting any
// previous one.
func (fs *FSStore) Save(jobID string, r *Report) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if err := os.MkdirAll(fs.jobDir(jobID), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tempPath := fs.reportPath(jobID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}
	finalPath := fs.reportPath(jobID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	slog.Debug("report saved", "jobID", jobID, "path", finalPath)
	return nil
}

// Load retrieves the report for the given job.
func (fs *FSStore) Load(jobID string) (*Report, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	path := fs.reportPath(jobID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{JobID: jobID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat report file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &r, nil
}

// List returns metadata for all stored reports.
func (fs *FSStore) List() ([]Info, error) {
	reportsDir := filepath.Join(fs.baseDir, "reports")
	if _, err := os.Stat(reportsDir); os.IsNotExist(err) {
		return []Info{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat reports directory: %w", err)
	}

	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		r, err := fs.Load(entry.Name())
		if err != nil {
			slog.Warn("failed to load report for listing", "jobID", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, r.ToInfo())
	}
	return infos, nil
}

// Delete removes a stored report and its directory.
func (fs *FSStore) Delete(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	dir := fs.jobDir(jobID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{JobID: jobID}
	} else if err != nil {
		return fmt.Errorf("failed to stat report directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove report directory: %w", err)
	}
	return nil
}
