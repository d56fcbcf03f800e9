package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileTimeLayout prefixes report file names so they sort by start time.
const fileTimeLayout = "20060102T150405Z"

// Writer writes run reports to YAML files.
type Writer struct {
	dir string
}

// NewWriter creates a new Writer storing reports in dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores run and returns the file path.
func (w *Writer) Write(run *Run) (string, error) {
	if run.ID == "" {
		return "", fmt.Errorf("run has no id")
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create runs dir: %w", err)
	}

	data, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run report: %w", err)
	}

	fullPath := filepath.Join(w.dir, FileName(run))

	// Write to temp, then rename, so readers never see a partial report.
	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write run report: %w", err)
	}

	return fullPath, nil
}

// FileName returns the report file name for run.
func FileName(run *Run) string {
	id := run.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s.yaml", run.StartedAt.UTC().Format(fileTimeLayout), id)
}
