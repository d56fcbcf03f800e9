// Package report persists the outcome of workflow runs.
//
// Each run is written as one YAML file under the runs directory so
// "skillflow history" can list past runs without any other state.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"skillflow/internal/executor"
)

// Run is the persisted record of one workflow run.
type Run struct {
	ID         string           `yaml:"id" json:"id"`
	Skill      string           `yaml:"skill" json:"skill"`
	Source     string           `yaml:"source" json:"source"`
	StartedAt  time.Time        `yaml:"started_at" json:"started_at"`
	FinishedAt time.Time        `yaml:"finished_at,omitempty" json:"finished_at,omitempty"`
	Summary    executor.Summary `yaml:"summary" json:"summary"`
	Steps      []StepRecord     `yaml:"steps" json:"steps"`
}

// StepRecord is the persisted form of an [executor.StepResult].
type StepRecord struct {
	Index      int             `yaml:"index" json:"index"`
	ID         string          `yaml:"id" json:"id"`
	Kind       string          `yaml:"kind" json:"kind"`
	Label      string          `yaml:"label" json:"label"`
	Status     executor.Status `yaml:"status" json:"status"`
	DurationMS int64           `yaml:"duration_ms" json:"duration_ms"`
	Error      string          `yaml:"error,omitempty" json:"error,omitempty"`
	Output     string          `yaml:"output,omitempty" json:"output,omitempty"`
}

// NewRun starts a record with a fresh run id.
func NewRun(skill, source string, startedAt time.Time) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Skill:     skill,
		Source:    source,
		StartedAt: startedAt,
	}
}

// Finish records the step results and the finish time.
func (r *Run) Finish(results []executor.StepResult, finishedAt time.Time) {
	r.FinishedAt = finishedAt
	r.Summary = executor.Summarize(results)
	r.Steps = make([]StepRecord, len(results))
	for i, res := range results {
		r.Steps[i] = StepRecord{
			Index:      i + 1,
			ID:         res.StepID,
			Kind:       string(res.Kind),
			Label:      res.Label,
			Status:     res.Status,
			DurationMS: res.Duration().Milliseconds(),
			Error:      res.Error(),
			Output:     outputText(res.Output),
		}
	}
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func outputText(v any) string {
	switch o := v.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return o.String()
	case string:
		return o
	}
	return fmt.Sprint(v)
}
