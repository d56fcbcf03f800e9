package executor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"skillflow/internal/workflow"
)

// Sentinel errors for step execution.
var (
	// ErrTimeout is matched by every [TimeoutError]. A timed-out wait step
	// halts the run even when continue-on-error is enabled.
	ErrTimeout = errors.New("wait condition timed out")

	// ErrNoHandler indicates no handler is registered for a step's kind.
	ErrNoHandler = errors.New("no handler registered")

	// ErrConditionNotMet is returned by wait handlers that stop polling
	// without observing their condition. The executor reports it as a timeout.
	ErrConditionNotMet = errors.New("condition not met")
)

// TimeoutError reports a wait step whose condition was not observed in time.
type TimeoutError struct {
	StepID  string
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("wait step %s timed out after %s", e.StepID, e.Timeout)
}

// Is makes errors.Is(err, ErrTimeout) report true.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Status is the outcome of a single step.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the step actually ran to an outcome.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// StepResult records what happened to one step during a run.
//
// StartedAt and FinishedAt are zero for steps that never started.
type StepResult struct {
	StepID     string
	Kind       workflow.Kind
	Label      string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Output     any
	Err        error
}

// Duration returns how long the step ran.
func (r StepResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Error returns the error text, or an empty string.
func (r StepResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Summary counts step results by status.
type Summary struct {
	Total     int `yaml:"total" json:"total"`
	Succeeded int `yaml:"succeeded" json:"succeeded"`
	Failed    int `yaml:"failed" json:"failed"`
	Skipped   int `yaml:"skipped" json:"skipped"`
	Cancelled int `yaml:"cancelled" json:"cancelled"`
}

// Summarize counts results by status.
func Summarize(results []StepResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// OK reports whether the run had no failed or cancelled steps.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Cancelled == 0
}

// ParseWaitDuration parses the target of a "wait time" step. A bare integer
// is a number of seconds; anything else must be a Go duration string.
func ParseWaitDuration(target string) (time.Duration, error) {
	target = strings.TrimSpace(target)
	if n, err := strconv.Atoi(target); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid wait duration %q", target)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(target)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid wait duration %q", target)
	}
	return d, nil
}
