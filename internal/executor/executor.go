// Package executor runs parsed workflows step by step.
//
// The executor provides [Executor], which walks a [workflow.Document] in order
// and dispatches each step to the [Handler] registered for its kind. It owns
// the ordering and failure policy only; all side effects live in handlers.
//
// Key concepts:
//   - Steps run one at a time in document order
//   - A failed step halts the run and later steps are reported skipped,
//     unless continue-on-error is enabled
//   - A wait step that times out always halts the run
//   - Cancellation is checked before each step; steps not yet started are
//     reported cancelled
//   - "wait time" steps are timed by the executor itself and need no handler
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"skillflow/internal/workflow"
)

// Handler performs the side effect for one kind of step.
//
// Handle returns an optional output value that is recorded on the
// [StepResult]. A non-nil error marks the step failed. Long-running handlers
// should observe ctx so cancellation and wait timeouts can end them early.
type Handler interface {
	Handle(ctx context.Context, step workflow.Step) (any, error)
}

// HandlerFunc adapts a function to the [Handler] interface.
type HandlerFunc func(ctx context.Context, step workflow.Step) (any, error)

// Handle calls f(ctx, step).
func (f HandlerFunc) Handle(ctx context.Context, step workflow.Step) (any, error) {
	return f(ctx, step)
}

// Handlers maps each step kind to its handler.
type Handlers map[workflow.Kind]Handler

// ProgressCallback is invoked before each step begins execution.
//
// The callback receives stepIndex (1-based), totalSteps and the step.
type ProgressCallback func(stepIndex, totalSteps int, step workflow.Step)

// ResultCallback is invoked once for every step result, in document order,
// as soon as the result is known.
type ResultCallback func(result StepResult)

// Executor runs workflow documents against a set of handlers.
//
// Use [New] to create an instance and [Executor.Execute] to run a document.
// An Executor keeps no state between runs and may be reused.
type Executor struct {
	handlers         Handlers
	logger           *zap.SugaredLogger
	continueOnError  bool
	startAt          int
	progressCallback ProgressCallback
	resultCallback   ResultCallback
	now              func() time.Time
}

// New creates an Executor that dispatches to handlers.
//
// Logging is disabled when logger is nil.
func New(handlers Handlers, logger *zap.SugaredLogger) *Executor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Executor{
		handlers: handlers,
		logger:   logger,
		startAt:  1,
		now:      time.Now,
	}
}

// SetContinueOnError controls whether a failed step halts the run.
//
// Wait timeouts halt the run regardless of this setting.
func (e *Executor) SetContinueOnError(v bool) {
	e.continueOnError = v
}

// SetStartAt makes the run begin at the given 1-based step index. Steps before
// it are reported skipped. Values below 1 reset to the first step.
func (e *Executor) SetStartAt(index int) {
	if index < 1 {
		index = 1
	}
	e.startAt = index
}

// SetProgressCallback configures an optional callback invoked before each step.
func (e *Executor) SetProgressCallback(cb ProgressCallback) {
	e.progressCallback = cb
}

// SetResultCallback configures an optional callback invoked for each result.
func (e *Executor) SetResultCallback(cb ResultCallback) {
	e.resultCallback = cb
}

// Execute runs every step of doc in order and returns one result per step.
//
// The returned slice always has len(doc.Steps) entries in document order.
// Execute itself never fails; inspect the results for partial progress.
func (e *Executor) Execute(ctx context.Context, doc *workflow.Document) []StepResult {
	results := make([]StepResult, 0, len(doc.Steps))
	total := len(doc.Steps)
	halted := false

	for i, step := range doc.Steps {
		if i+1 < e.startAt {
			results = append(results, e.emit(notRun(step, StatusSkipped, nil)))
			continue
		}

		if halted {
			results = append(results, e.emit(notRun(step, StatusSkipped, nil)))
			continue
		}

		if err := ctx.Err(); err != nil {
			results = append(results, e.emit(notRun(step, StatusCancelled, err)))
			continue
		}

		if e.progressCallback != nil {
			e.progressCallback(i+1, total, step)
		}

		result := e.runStep(ctx, step)
		results = append(results, e.emit(result))

		if result.Status == StatusFailed {
			if errors.Is(result.Err, ErrTimeout) || !e.continueOnError {
				halted = true
			}
		}
	}

	return results
}

func (e *Executor) emit(r StepResult) StepResult {
	if e.resultCallback != nil {
		e.resultCallback(r)
	}
	return r
}

// runStep executes a single step and classifies its outcome.
func (e *Executor) runStep(ctx context.Context, step workflow.Step) StepResult {
	log := e.logger.With("step_id", step.ID, "kind", string(step.Kind()))
	log.Debugw("step started", "label", step.Label)

	result := StepResult{
		StepID:    step.ID,
		Kind:      step.Kind(),
		Label:     step.Label,
		StartedAt: e.now(),
	}

	var (
		output any
		err    error
	)
	if wait, ok := step.Action.(workflow.Wait); ok {
		output, err = e.runWait(ctx, step, wait)
	} else {
		output, err = e.dispatch(ctx, step)
	}

	result.FinishedAt = e.now()
	result.Output = output

	switch {
	case err == nil:
		result.Status = StatusSucceeded
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		result.Status = StatusCancelled
		result.Err = err
	default:
		result.Status = StatusFailed
		result.Err = err
	}

	fields := []any{"status", string(result.Status), "duration", result.Duration()}
	if result.Err != nil {
		log.Warnw("step finished", append(fields, "error", result.Err.Error())...)
	} else {
		log.Infow("step finished", fields...)
	}

	return result
}

func (e *Executor) dispatch(ctx context.Context, step workflow.Step) (any, error) {
	h, ok := e.handlers[step.Kind()]
	if !ok || h == nil {
		return nil, fmt.Errorf("%w for %s steps", ErrNoHandler, step.Kind())
	}
	return h.Handle(ctx, step)
}

// runWait blocks until the wait condition holds or its timeout elapses.
//
// The handler runs in its own goroutine so a handler that ignores ctx cannot
// hold the run past the timeout.
func (e *Executor) runWait(ctx context.Context, step workflow.Step, wait workflow.Wait) (any, error) {
	timeout := time.Duration(wait.TimeoutSeconds) * time.Second
	if wait.TimeoutSeconds <= 0 {
		timeout = time.Duration(workflow.DefaultWaitTimeout) * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if wait.Condition == workflow.ConditionTime {
		return nil, e.classifyWait(ctx, step, timeout, sleepFor(waitCtx, wait.Target))
	}

	type outcome struct {
		output any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := e.dispatch(waitCtx, step)
		done <- outcome{out, err}
	}()

	select {
	case o := <-done:
		return o.output, e.classifyWait(ctx, step, timeout, o.err)
	case <-waitCtx.Done():
		return nil, e.classifyWait(ctx, step, timeout, waitCtx.Err())
	}
}

// classifyWait maps a wait error to a cancellation, a [TimeoutError] or a
// plain failure.
func (e *Executor) classifyWait(ctx context.Context, step workflow.Step, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrConditionNotMet) {
		return &TimeoutError{StepID: step.ID, Timeout: timeout, Cause: err}
	}
	return err
}

// sleepFor waits for the duration encoded in target: a number of seconds or
// a Go duration string such as "1m30s".
func sleepFor(ctx context.Context, target string) error {
	d, err := ParseWaitDuration(target)
	if err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func notRun(step workflow.Step, status Status, err error) StepResult {
	return StepResult{
		StepID: step.ID,
		Kind:   step.Kind(),
		Label:  step.Label,
		Status: status,
		Err:    err,
	}
}
