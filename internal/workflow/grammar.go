package workflow

import (
	"regexp"
	"strings"
)

// descriptionSeparator splits step content from its trailing description.
const descriptionSeparator = " - "

var (
	// stepStartPattern marks the first physical line of a step.
	stepStartPattern = regexp.MustCompile(`^\d+\.\s*\[`)

	// stepLinePattern captures the kind token and the remainder of a step line.
	stepLinePattern = regexp.MustCompile(`^\d+\.\s*\[([^\]]*)\]\s*(.*)$`)

	apiPattern  = regexp.MustCompile(`(?is)^(GET|POST|PUT|DELETE|PATCH)\s+(\S+)(?:\s+(.*))?$`)
	filePattern = regexp.MustCompile(`(?is)^(download|upload|open)\s+(.+)$`)
	waitPattern = regexp.MustCompile(`(?is)^(log_contains|api_status|file_exists|time)\s+(?:"([^"]*)"|(\S+))(?:\s+(\d+))?\s*$`)
)

// splitKindToken separates "DB:reporting" into the uppercase kind token and
// its qualifier. The qualifier keeps its original case.
func splitKindToken(token string) (kind, qualifier string) {
	token = strings.TrimSpace(token)
	if idx := strings.Index(token, ":"); idx >= 0 {
		qualifier = strings.TrimSpace(token[idx+1:])
		token = token[:idx]
	}
	return strings.ToUpper(strings.TrimSpace(token)), qualifier
}

// splitDescription peels a trailing " - description" off the remainder of a
// step line. The last separator wins so that hyphenated content stays whole.
func splitDescription(remainder string) (content, description string) {
	idx := strings.LastIndex(remainder, descriptionSeparator)
	if idx < 0 {
		return strings.TrimSpace(remainder), ""
	}
	return strings.TrimSpace(remainder[:idx]), strings.TrimSpace(remainder[idx+len(descriptionSeparator):])
}

// isStepStart reports whether a trimmed physical line begins a new step.
func isStepStart(line string) bool {
	return stepStartPattern.MatchString(line)
}
