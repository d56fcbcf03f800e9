package cli

import (
	"errors"
	"fmt"
)

// ExitError is a command failure carrying the process exit code.
//
// Commands print their own message through the [output.Printer] and return
// an ExitError; [Execute] turns it into the exit status without printing it
// again. Err, when set, is the underlying cause and is logged at debug level.
//
// Codes used by skillflow:
//   - 1: a step failed or was cancelled, a document failed validation, or a
//     skill or run could not be loaded
//   - 2: invalid flag values
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an [ExitError] with no cause.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// exitWith creates an [ExitError] wrapping cause.
func exitWith(code int, cause error) *ExitError {
	return &ExitError{Code: code, Err: cause}
}

// IsExitError reports whether err is or wraps an [ExitError] and returns its
// code.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
