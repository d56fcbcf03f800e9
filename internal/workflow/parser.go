package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors returned by [ParseLine]. [Parse] converts them into
// [Diagnostic] reasons instead of failing.
var (
	// ErrNotStepLine indicates the line does not have the "<n>. [KIND] ..." shape.
	ErrNotStepLine = errors.New("not a workflow step line")

	// ErrUnknownKind indicates the bracketed kind token is not a known step kind.
	ErrUnknownKind = errors.New("unknown step kind")

	// ErrMalformedStep indicates the content does not match the kind's grammar
	// or a required field is empty.
	ErrMalformedStep = errors.New("malformed step")
)

// IDFunc generates step identifiers. It is a variable so tests can make ids
// predictable.
var IDFunc = uuid.NewString

// ParseLine parses one normalized workflow line into a [Step].
//
// The returned error wraps [ErrNotStepLine], [ErrUnknownKind] or
// [ErrMalformedStep]. ParseLine has no side effects; every successful call
// assigns a fresh ID.
func ParseLine(line string) (Step, error) {
	m := stepLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Step{}, ErrNotStepLine
	}

	kind, qualifier := splitKindToken(m[1])
	content, description := splitDescription(m[2])
	if content == "" {
		return Step{}, fmt.Errorf("%w: empty content", ErrMalformedStep)
	}

	action, err := parseAction(kind, qualifier, content)
	if err != nil {
		return Step{}, err
	}

	label := description
	if label == "" {
		label = content
	}

	return Step{
		ID:     IDFunc(),
		Label:  label,
		Action: action,
	}, nil
}

func parseAction(kind, qualifier, content string) (Action, error) {
	switch kind {
	case "TERMINAL":
		return Terminal{Command: content}, nil

	case "WEB":
		return Web{URL: content}, nil

	case "DB":
		return DB{Query: content, Connection: qualifier}, nil

	case "API":
		m := apiPattern.FindStringSubmatch(content)
		if m == nil {
			return nil, fmt.Errorf("%w: api step needs \"<METHOD> <URL> [BODY]\"", ErrMalformedStep)
		}
		return API{
			Method: Method(strings.ToUpper(m[1])),
			URL:    m[2],
			Body:   strings.TrimSpace(m[3]),
		}, nil

	case "FILE":
		m := filePattern.FindStringSubmatch(content)
		if m == nil {
			return nil, fmt.Errorf("%w: file step needs \"download|upload|open <PATH>\"", ErrMalformedStep)
		}
		path := strings.TrimSpace(m[2])
		if path == "" {
			return nil, fmt.Errorf("%w: file step has empty path", ErrMalformedStep)
		}
		return File{Action: FileAction(strings.ToLower(m[1])), Path: path}, nil

	case "WAIT":
		return parseWait(content)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func parseWait(content string) (Action, error) {
	m := waitPattern.FindStringSubmatch(content)
	if m == nil {
		return nil, fmt.Errorf("%w: wait step needs \"<CONDITION> <TARGET> [TIMEOUT]\"", ErrMalformedStep)
	}

	target := m[2]
	if target == "" {
		target = m[3]
	}
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: wait step has empty target", ErrMalformedStep)
	}

	timeout := DefaultWaitTimeout
	if m[4] != "" {
		n, err := strconv.Atoi(m[4])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid timeout %q", ErrMalformedStep, m[4])
		}
		timeout = n
	}

	return Wait{
		Condition:      Condition(strings.ToLower(m[1])),
		Target:         target,
		TimeoutSeconds: timeout,
	}, nil
}
