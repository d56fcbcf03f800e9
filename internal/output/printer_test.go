package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"skillflow/internal/executor"
	"skillflow/internal/workflow"
)

type textOutput string

func (t textOutput) String() string { return string(t) }

func TestPrinter_Plan(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)

	doc := workflow.Parse("## Workflow\n1. [TERMINAL] npm test - Run tests\n2. [WEB] https://example.com\n")
	p.Plan(doc)

	out := buf.String()
	assert.Contains(t, out, "1. TERMINAL")
	assert.Contains(t, out, "Run tests")
	assert.Contains(t, out, "npm test")
	assert.Contains(t, out, "2. WEB")
	assert.Contains(t, out, "https://example.com")
}

func TestPrinter_Plan_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinterWithWriter(buf).Plan(workflow.Parse("# Notes\nnothing here\n"))

	assert.Contains(t, buf.String(), "No workflow defined.")
}

func TestPrinter_Diagnostics(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)

	p.Diagnostics([]workflow.Diagnostic{{Line: 4, Text: "3. [FTP] get file", Reason: "unknown step kind"}})

	assert.Contains(t, buf.String(), "line 4: unknown step kind")
	assert.Contains(t, buf.String(), "3. [FTP] get file")
}

func TestPrinter_StepResult(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		result executor.StepResult
		want   []string
	}{
		{
			name: "succeeded with output",
			result: executor.StepResult{
				Label: "Build", Status: executor.StatusSucceeded,
				StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond),
				Output: textOutput("line one\nline two\n"),
			},
			want: []string{"✓ Build (1.5s)", "line one", "line two"},
		},
		{
			name:   "failed",
			result: executor.StepResult{Label: "Deploy", Status: executor.StatusFailed, Err: errors.New("exit status 1")},
			want:   []string{"✗ Deploy: exit status 1"},
		},
		{
			name:   "skipped",
			result: executor.StepResult{Label: "Notify", Status: executor.StatusSkipped},
			want:   []string{"Notify (skipped)"},
		},
		{
			name:   "cancelled",
			result: executor.StepResult{Label: "Wait", Status: executor.StatusCancelled},
			want:   []string{"Wait (cancelled)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewPrinterWithWriter(buf).StepResult(tt.result)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestPrinter_TruncatesOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)
	p.SetTruncation(2, 10)

	p.StepResult(executor.StepResult{
		Label:  "Logs",
		Status: executor.StatusSucceeded,
		Output: textOutput("abcdefghijklmnop\nsecond\nthird\nfourth"),
	})

	out := buf.String()
	assert.Contains(t, out, "abcdefg...")
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "third")
	assert.Contains(t, out, "(2 more lines)")
}

func TestPrinter_TruncatesOnRuneBoundary(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)
	p.SetTruncation(5, 6)

	p.StepResult(executor.StepResult{
		Label:  "Logs",
		Status: executor.StatusSucceeded,
		Output: textOutput("部署完成了吗是的"),
	})

	out := buf.String()
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "部署完...")
	assert.NotContains(t, out, "成了")
}

func TestPrinter_Summary(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)

	p.Summary(executor.Summary{Total: 3, Succeeded: 3}, 2*time.Second)
	assert.Contains(t, buf.String(), "✓ 3 steps: 3 succeeded, 0 failed")

	buf.Reset()
	p.Summary(executor.Summary{Total: 3, Succeeded: 1, Failed: 1, Skipped: 1}, time.Second)
	assert.Contains(t, buf.String(), "✗ 3 steps: 1 succeeded, 1 failed, 1 skipped, 0 cancelled")
}

func TestPrinter_TextAndError(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)

	p.Header("Workflow")
	p.Text("%d steps", 2)
	p.Error("bad %s", "thing")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"Workflow", "2 steps", "✗ bad thing"}, lines)
}
