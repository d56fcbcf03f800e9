package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrRunNotFound indicates no recorded run matches an id.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousID indicates an id prefix matches more than one run.
	ErrAmbiguousID = errors.New("ambiguous run id")
)

// Reader reads run reports from a runs directory.
type Reader struct {
	dir string
}

// NewReader creates a new [Reader] for dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Read parses the report at path.
func (r *Reader) Read(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}

	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run report %s: %w", filepath.Base(path), err)
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run. A missing directory is an empty history.
//
// Files that fail to parse are skipped so one corrupt report does not hide
// the rest.
func (r *Reader) List(limit int) ([]*Run, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var runs []*Run
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		run, err := r.Read(filepath.Join(r.dir, e.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Find returns the run whose id starts with prefix. A prefix shared by more
// than one run is an error wrapping [ErrAmbiguousID].
func (r *Reader) Find(prefix string) (*Run, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	runs, err := r.List(0)
	if err != nil {
		return nil, err
	}

	var match *Run
	for _, run := range runs {
		if !strings.HasPrefix(run.ID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s matches %s and %s", ErrAmbiguousID, prefix, match.ID, run.ID)
		}
		match = run
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}
