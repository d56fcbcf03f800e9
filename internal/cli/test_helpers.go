package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"skillflow/internal/config"
	"skillflow/internal/executor"
	"skillflow/internal/output"
	"skillflow/internal/workflow"
)

// MockHandler records the steps it receives and fails those whose label is
// listed in FailOnLabels.
type MockHandler struct {
	mu sync.Mutex

	// Executed records step labels in execution order.
	Executed []string

	// FailOnLabels lists the step labels that fail.
	FailOnLabels []string
}

func (m *MockHandler) Handle(ctx context.Context, step workflow.Step) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Executed = append(m.Executed, step.Label)
	for _, l := range m.FailOnLabels {
		if l == step.Label {
			return nil, errors.New("mock failure")
		}
	}
	return nil, nil
}

// mockHandlers registers h for every step kind.
func mockHandlers(h executor.Handler) executor.Handlers {
	hs := executor.Handlers{}
	for _, k := range workflow.Kinds {
		hs[k] = h
	}
	return hs
}

// newTestApp returns an App with temp skills and runs directories, mock
// handlers and a buffer-backed printer.
func newTestApp(t *testing.T, h executor.Handler) (*App, *bytes.Buffer) {
	t.Helper()

	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Skills.Dir = filepath.Join(tmpDir, "skills")
	cfg.Runs.Dir = filepath.Join(tmpDir, "runs")

	buf := &bytes.Buffer{}
	app := &App{
		Config:   cfg,
		Printer:  output.NewPrinterWithWriter(buf),
		Handlers: mockHandlers(h),
		Now:      func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) },
	}
	return app, buf
}

// writeSkillFile writes a skill document under the app's skills directory.
func writeSkillFile(t *testing.T, app *App, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(app.Config.Skills.Dir, 0755); err != nil {
		t.Fatalf("failed to create skills directory: %v", err)
	}
	path := filepath.Join(app.Config.Skills.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write skill file: %v", err)
	}
	return path
}

// runCommand executes the root command with args.
func runCommand(app *App, args ...string) error {
	rootCmd := NewRootCommand(app)
	outBuf := &bytes.Buffer{}
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(outBuf)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
