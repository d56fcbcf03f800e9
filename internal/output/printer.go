// Package output renders workflow plans and run results to the terminal.
//
// [Printer] wraps an io.Writer with lipgloss styles. Colors are chosen by the
// renderer bound to the writer, so output to a buffer or a pipe is plain text.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"skillflow/internal/executor"
	"skillflow/internal/workflow"
)

// Printer writes formatted skillflow output.
type Printer struct {
	out            io.Writer
	truncateLines  int
	truncateLength int

	header  lipgloss.Style
	muted   lipgloss.Style
	kind    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	skipped lipgloss.Style
	warning lipgloss.Style
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a Printer writing to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out:            w,
		truncateLines:  20,
		truncateLength: 80,
		header:         r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:          r.NewStyle().Foreground(lipgloss.Color("8")),
		kind:           r.NewStyle().Bold(true).Width(10),
		success:        r.NewStyle().Foreground(lipgloss.Color("10")),
		failure:        r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		skipped:        r.NewStyle().Foreground(lipgloss.Color("8")),
		warning:        r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// SetTruncation limits how much step output is shown. Zero or negative
// values leave the current limit unchanged.
func (p *Printer) SetTruncation(lines, length int) {
	if lines > 0 {
		p.truncateLines = lines
	}
	if length > 0 {
		p.truncateLength = length
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Header prints a bold section title.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.out, p.header.Render(title))
}

// Text prints a plain line.
func (p *Printer) Text(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.out, p.failure.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Plan prints the steps of a document without running them.
func (p *Printer) Plan(doc *workflow.Document) {
	if doc.Empty() {
		fmt.Fprintln(p.out, p.muted.Render("No workflow defined."))
		return
	}
	for i, step := range doc.Steps {
		fmt.Fprintf(p.out, "%3d. %s %s\n", i+1, p.kind.Render(step.Kind().Token()), step.Label)
		if step.Label != step.Content() {
			fmt.Fprintf(p.out, "     %s %s\n", strings.Repeat(" ", 10), p.muted.Render(p.truncateLine(step.Content())))
		}
	}
}

// Diagnostics prints dropped workflow lines.
func (p *Printer) Diagnostics(diags []workflow.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(p.out, p.warning.Render(fmt.Sprintf("⚠ line %d: %s", d.Line, d.Reason)))
		fmt.Fprintf(p.out, "    %s\n", p.muted.Render(p.truncateLine(d.Text)))
	}
}

// StepStart prints the progress line shown before a step runs.
func (p *Printer) StepStart(index, total int, step workflow.Step) {
	fmt.Fprintf(p.out, "%s %s %s\n",
		p.muted.Render(fmt.Sprintf("[%d/%d]", index, total)),
		p.kind.Render(step.Kind().Token()),
		step.Label)
}

// StepResult prints the outcome of a step, including truncated output for
// steps that produced text.
func (p *Printer) StepResult(r executor.StepResult) {
	var line string
	switch r.Status {
	case executor.StatusSucceeded:
		line = p.success.Render(fmt.Sprintf("  ✓ %s (%s)", r.Label, formatDuration(r.Duration())))
	case executor.StatusFailed:
		line = p.failure.Render(fmt.Sprintf("  ✗ %s: %s", r.Label, r.Error()))
	case executor.StatusSkipped:
		line = p.skipped.Render(fmt.Sprintf("  - %s (skipped)", r.Label))
	case executor.StatusCancelled:
		line = p.warning.Render(fmt.Sprintf("  ⊘ %s (cancelled)", r.Label))
	}
	fmt.Fprintln(p.out, line)

	if s, ok := r.Output.(fmt.Stringer); ok && r.Status == executor.StatusSucceeded {
		p.block(s.String())
	}
}

// Summary prints the aggregate counts of a run.
func (p *Printer) Summary(s executor.Summary, elapsed time.Duration) {
	text := fmt.Sprintf("%d steps: %d succeeded, %d failed, %d skipped, %d cancelled in %s",
		s.Total, s.Succeeded, s.Failed, s.Skipped, s.Cancelled, formatDuration(elapsed))
	fmt.Fprintln(p.out)
	if s.OK() {
		fmt.Fprintln(p.out, p.success.Render("✓ "+text))
	} else {
		fmt.Fprintln(p.out, p.failure.Render("✗ "+text))
	}
}

// block prints indented, truncated multi-line text.
func (p *Printer) block(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	hidden := 0
	if len(lines) > p.truncateLines {
		hidden = len(lines) - p.truncateLines
		lines = lines[:p.truncateLines]
	}
	for _, l := range lines {
		fmt.Fprintf(p.out, "    %s\n", p.muted.Render(p.truncateLine(l)))
	}
	if hidden > 0 {
		fmt.Fprintf(p.out, "    %s\n", p.muted.Render(fmt.Sprintf("... (%d more lines)", hidden)))
	}
}

// truncateLine shortens s to truncateLength runes.
func (p *Printer) truncateLine(s string) string {
	if utf8.RuneCountInString(s) <= p.truncateLength {
		return s
	}
	runes := []rune(s)
	if p.truncateLength <= 3 {
		return string(runes[:p.truncateLength])
	}
	return string(runes[:p.truncateLength-3]) + "..."
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
