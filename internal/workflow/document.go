package workflow

import (
	"errors"
	"strings"
)

// Diagnostic records a workflow line that was dropped during parsing.
type Diagnostic struct {
	// Line is the 1-based source line where the dropped step begins.
	Line int `json:"line" yaml:"line"`

	// Text is the logical line after continuation joining.
	Text string `json:"text" yaml:"text"`

	// Reason describes why the line produced no step.
	Reason string `json:"reason" yaml:"reason"`

	// Err is the underlying parse error; match it with errors.Is against
	// [ErrUnknownKind] or [ErrMalformedStep].
	Err error `json:"-" yaml:"-"`
}

// Document is the ordered, immutable result of parsing a workflow.
//
// Steps preserve source order. A document without a workflow section, or
// with no parseable steps, has no steps and is not an error.
type Document struct {
	Steps       []Step
	Diagnostics []Diagnostic
}

// Parse extracts and parses the workflow embedded in a Markdown document.
//
// Each call assigns fresh step ids. Dropped lines are reported in
// [Document.Diagnostics].
func Parse(text string) *Document {
	doc := &Document{}
	for _, line := range Extract(text) {
		step, err := ParseLine(line.Text)
		if err != nil {
			doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
				Line:   line.Number,
				Text:   line.Text,
				Reason: err.Error(),
				Err:    err,
			})
			continue
		}
		doc.Steps = append(doc.Steps, step)
	}
	return doc
}

// ParseSteps is shorthand for Parse(text).Steps.
func ParseSteps(text string) []Step {
	return Parse(text).Steps
}

// Empty reports whether the document has no steps.
func (d *Document) Empty() bool {
	return len(d.Steps) == 0
}

// Step returns the step with the given id.
func (d *Document) Step(id string) (Step, bool) {
	for _, s := range d.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// Format renders the document's steps as a workflow section.
func (d *Document) Format() string {
	var b strings.Builder
	b.WriteString("## Workflow\n\n")
	for i, s := range d.Steps {
		b.WriteString(s.Format(i + 1))
		b.WriteString("\n")
	}
	return b.String()
}

// HasUnknownKinds reports whether any dropped line used an unrecognized kind token.
func (d *Document) HasUnknownKinds() bool {
	for _, diag := range d.Diagnostics {
		if errors.Is(diag.Err, ErrUnknownKind) {
			return true
		}
	}
	return false
}
