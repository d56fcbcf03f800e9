package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"skillflow/internal/config"
	"skillflow/internal/workflow"
)

// commandWaitDelay bounds how long a cancelled command may keep its output
// pipes open after the shell is killed.
const commandWaitDelay = 2 * time.Second

// CommandResult is the output of a terminal step.
type CommandResult struct {
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	Output   string `json:"output" yaml:"output"`
}

// String returns the trailing command output.
func (r CommandResult) String() string {
	return r.Output
}

// TerminalRunner runs terminal steps through a shell.
//
// Combined stdout and stderr are streamed into the [SessionLog] under the
// configured session name while the command runs.
type TerminalRunner struct {
	shell     string
	dir       string
	session   string
	tailLines int
	env       []string
	sessions  *SessionLog
	logger    *zap.SugaredLogger
}

// NewTerminalRunner creates a runner from terminal configuration.
func NewTerminalRunner(cfg config.TerminalConfig, sessions *SessionLog, logger *zap.SugaredLogger) *TerminalRunner {
	tail := cfg.TailLines
	if tail <= 0 {
		tail = 20
	}
	session := cfg.Session
	if session == "" {
		session = "default"
	}
	return &TerminalRunner{
		shell:     cfg.Shell,
		dir:       cfg.Dir,
		session:   session,
		tailLines: tail,
		env:       os.Environ(),
		sessions:  sessions,
		logger:    nopIfNil(logger),
	}
}

// Session returns the name of the session commands write to.
func (r *TerminalRunner) Session() string {
	return r.session
}

// Handle runs the step's command and fails on a non-zero exit status.
func (r *TerminalRunner) Handle(ctx context.Context, step workflow.Step) (any, error) {
	action, ok := step.Action.(workflow.Terminal)
	if !ok {
		return nil, unexpectedAction(step)
	}

	args, err := commandArgs(r.shell, action.Command)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.dir
	cmd.Env = r.env
	cmd.WaitDelay = commandWaitDelay
	configureProcess(cmd)

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.sessions != nil {
		w = io.MultiWriter(&buf, r.sessions.Writer(r.session))
	}
	cmd.Stdout = w
	cmd.Stderr = w

	r.logger.Debugw("running command", "session", r.session, "args", args)
	runErr := cmd.Run()

	result := CommandResult{
		ExitCode: exitCode(runErr),
		Output:   tailLines(buf.String(), r.tailLines),
	}

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("command exited with status %d", result.ExitCode)
		}
		return result, fmt.Errorf("failed to run command: %w", runErr)
	}
	return result, nil
}

// commandArgs builds the argv that runs script under shellSpec.
//
// shellSpec may carry extra arguments ("bash --norc"). An empty spec selects
// sh on Unix and cmd on Windows.
func commandArgs(shellSpec string, script string) ([]string, error) {
	if strings.TrimSpace(script) == "" {
		return nil, errors.New("empty command")
	}
	if strings.TrimSpace(shellSpec) == "" {
		if runtime.GOOS == "windows" {
			return []string{"cmd", "/C", script}, nil
		}
		return []string{"sh", "-c", script}, nil
	}

	fields := strings.Fields(shellSpec)
	shell := fields[0]
	args := append([]string{}, fields[1:]...)

	switch strings.ToLower(filepath.Base(shell)) {
	case "bash", "zsh", "ksh", "fish", "sh", "dash":
		args = append(args, "-c", script)
	case "cmd", "cmd.exe":
		args = append(args, "/C", script)
	case "pwsh", "pwsh.exe", "powershell", "powershell.exe":
		args = append(args, "-Command", script)
	default:
		args = append(args, script)
	}
	return append([]string{shell}, args...), nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func tailLines(input string, maxLines int) string {
	if input == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(input, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}
