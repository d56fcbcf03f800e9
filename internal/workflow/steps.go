// Package workflow parses the workflow mini-language embedded in skill documents.
//
// A workflow lives under a "## Workflow" heading in a Markdown document. Each
// step is one numbered line with a bracketed kind token:
//
//	1. [TERMINAL] npm run build - Build project
//	2. [API] POST https://example.com/deploy {"v":"1.0"} - Trigger deploy
//	3. [WAIT] time 10 - Pause
//	4. [DB:reporting] SELECT 1 - Sanity check
//
// Key types:
//   - [Step] is one parsed step: an id, a label and an [Action]
//   - [Action] is the closed set of step payloads ([Terminal], [API], [DB], [Web], [File], [Wait])
//   - [Document] is the ordered result of [Parse], with [Diagnostic] entries for dropped lines
//
// Parsing never fails as a whole. Lines that look like steps but do not satisfy
// their kind's grammar are dropped from the step list and reported as diagnostics.
package workflow

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind identifies the type of a workflow step.
type Kind string

const (
	KindTerminal Kind = "terminal"
	KindAPI      Kind = "api"
	KindDB       Kind = "db"
	KindWeb      Kind = "web"
	KindFile     Kind = "file"
	KindWait     Kind = "wait"
)

// Kinds lists every step kind in the order they are documented.
var Kinds = []Kind{KindTerminal, KindAPI, KindDB, KindWeb, KindFile, KindWait}

// Token returns the uppercase bracket token used in step lines.
func (k Kind) Token() string {
	switch k {
	case KindTerminal:
		return "TERMINAL"
	case KindAPI:
		return "API"
	case KindDB:
		return "DB"
	case KindWeb:
		return "WEB"
	case KindFile:
		return "FILE"
	case KindWait:
		return "WAIT"
	}
	return string(k)
}

// Method is an HTTP verb accepted by API steps.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// FileAction is the operation performed by a file step.
type FileAction string

const (
	FileDownload FileAction = "download"
	FileUpload   FileAction = "upload"
	FileOpen     FileAction = "open"
)

// Condition is the predicate a wait step blocks on.
type Condition string

const (
	ConditionLogContains Condition = "log_contains"
	ConditionAPIStatus   Condition = "api_status"
	ConditionFileExists  Condition = "file_exists"
	ConditionTime        Condition = "time"
)

// DefaultWaitTimeout is the timeout in seconds applied to wait steps that
// do not specify one.
const DefaultWaitTimeout = 300

// Action is the kind-specific payload of a [Step].
//
// The set of implementations is closed: [Terminal], [API], [DB], [Web],
// [File] and [Wait]. Switch on the concrete type to handle each kind.
type Action interface {
	Kind() Kind
	content() string
	isAction()
}

// Terminal runs a shell command.
type Terminal struct {
	Command string `json:"command" yaml:"command"`
}

// API performs an HTTP request. Body is empty when absent.
type API struct {
	Method Method `json:"method" yaml:"method"`
	URL    string `json:"url" yaml:"url"`
	Body   string `json:"body,omitempty" yaml:"body,omitempty"`
}

// DB runs a query. Connection is empty for the default connection.
type DB struct {
	Query      string `json:"query" yaml:"query"`
	Connection string `json:"connection,omitempty" yaml:"connection,omitempty"`
}

// Web opens a URL in a browser view.
type Web struct {
	URL string `json:"url" yaml:"url"`
}

// File performs a file action on a path.
type File struct {
	Action FileAction `json:"action" yaml:"action"`
	Path   string     `json:"path" yaml:"path"`
}

// Wait blocks until Condition holds for Target or TimeoutSeconds elapse.
type Wait struct {
	Condition      Condition `json:"condition" yaml:"condition"`
	Target         string    `json:"target" yaml:"target"`
	TimeoutSeconds int       `json:"timeout_seconds" yaml:"timeout_seconds"`
}

func (Terminal) Kind() Kind { return KindTerminal }
func (API) Kind() Kind      { return KindAPI }
func (DB) Kind() Kind       { return KindDB }
func (Web) Kind() Kind      { return KindWeb }
func (File) Kind() Kind     { return KindFile }
func (Wait) Kind() Kind     { return KindWait }

func (Terminal) isAction() {}
func (API) isAction()      {}
func (DB) isAction()       {}
func (Web) isAction()      {}
func (File) isAction()     {}
func (Wait) isAction()     {}

func (a Terminal) content() string { return a.Command }

func (a API) content() string {
	s := string(a.Method) + " " + a.URL
	if a.Body != "" {
		s += " " + a.Body
	}
	return s
}

func (a DB) content() string  { return a.Query }
func (a Web) content() string { return a.URL }

func (a File) content() string { return string(a.Action) + " " + a.Path }

// content quotes the target only when it contains whitespace. Parsed targets
// never hold both whitespace and a double quote.
func (a Wait) content() string {
	target := a.Target
	if strings.ContainsFunc(target, unicode.IsSpace) {
		target = `"` + target + `"`
	}
	return fmt.Sprintf("%s %s %d", a.Condition, target, a.TimeoutSeconds)
}

// Step is a single parsed workflow step.
//
// ID is assigned at parse time and is unique within a [Document]. Label is the
// trailing description of the line, or the step content when none was given.
type Step struct {
	ID     string
	Label  string
	Action Action
}

// Kind returns the kind of the step's action.
func (s Step) Kind() Kind {
	return s.Action.Kind()
}

// Content returns the step payload rendered in line syntax, without the
// kind token or description.
func (s Step) Content() string {
	return s.Action.content()
}

// Format renders the step as a workflow line with the given ordinal.
//
// Parsing the returned line yields a step equal to s apart from its ID, as
// long as the label does not itself contain " - ". The description suffix is
// omitted when the label equals the content.
func (s Step) Format(ordinal int) string {
	token := s.Kind().Token()
	if db, ok := s.Action.(DB); ok && db.Connection != "" {
		token += ":" + db.Connection
	}
	line := fmt.Sprintf("%d. [%s] %s", ordinal, token, s.Content())
	if s.Label != "" && s.Label != s.Content() {
		line += descriptionSeparator + s.Label
	}
	return line
}
