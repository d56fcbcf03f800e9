package workflow

import (
	"regexp"
	"strings"
)

var (
	workflowHeading = regexp.MustCompile(`(?i)^##\s*workflow\s*$`)
	level2Heading   = regexp.MustCompile(`^##(?:[^#]|$)`)
	horizontalRule  = regexp.MustCompile(`^(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
)

// Line is a logical workflow line after continuation joining.
type Line struct {
	// Number is the 1-based physical line in the source document where the
	// step begins.
	Number int

	// Text is the step line with any continuation lines appended.
	Text string
}

// Extract locates the "## Workflow" section of a document and returns its
// logical step lines.
//
// The section ends at the next level-2 heading, a horizontal rule, a fenced
// code block marker, or the end of the document. Inside the section, any
// line that does not start with "<digits>." followed by "[" is joined onto the
// preceding step line with a single space. Continuation lines that appear
// before the first step, and blank lines, are discarded.
//
// A document without a workflow heading yields no lines.
func Extract(text string) []Line {
	physical := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := -1
	for i, raw := range physical {
		if workflowHeading.MatchString(strings.TrimSpace(raw)) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var lines []Line
	for i := start; i < len(physical); i++ {
		trimmed := strings.TrimSpace(physical[i])
		if endsSection(trimmed) {
			break
		}
		if trimmed == "" {
			continue
		}

		if isStepStart(trimmed) {
			lines = append(lines, Line{Number: i + 1, Text: trimmed})
			continue
		}

		if len(lines) == 0 {
			continue
		}
		last := &lines[len(lines)-1]
		last.Text += " " + trimmed
	}

	return lines
}

func endsSection(trimmed string) bool {
	return level2Heading.MatchString(trimmed) ||
		horizontalRule.MatchString(trimmed) ||
		strings.HasPrefix(trimmed, "```") ||
		strings.HasPrefix(trimmed, "~~~")
}
