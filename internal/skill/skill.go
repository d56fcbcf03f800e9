// Package skill reads skill documents: Markdown files that describe a task
// and embed a "## Workflow" section of executable steps.
//
// A skill may start with YAML front matter:
//
//	---
//	name: deploy
//	description: Build and deploy the web app
//	shortcut: /deploy
//	tags: [release, web]
//	---
//	# Deploy
//
//	## Workflow
//
//	1. [TERMINAL] npm run build - Build project
//
// Without front matter the name falls back to the first "# " heading, then to
// the file name.
package skill

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"skillflow/internal/workflow"
)

// ErrSkillNotFound is returned when a catalog lookup matches nothing.
var ErrSkillNotFound = errors.New("skill not found")

// frontMatterDelimiter opens and closes the YAML header.
const frontMatterDelimiter = "---"

// Skill is one parsed skill document.
type Skill struct {
	// Name identifies the skill in the catalog.
	Name string `yaml:"name"`

	// Description is a one-line summary shown by "skillflow skills".
	Description string `yaml:"description"`

	// Shortcut is an alternative lookup key, usually a slash command such as "/deploy".
	Shortcut string `yaml:"shortcut"`

	// Tags are free-form labels.
	Tags []string `yaml:"tags"`

	// Path is the file the skill was loaded from, if any.
	Path string `yaml:"-"`

	// Body is the Markdown after the front matter.
	Body string `yaml:"-"`
}

// Load reads and parses the skill document at path.
func Load(path string) (*Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse splits data into front matter and body.
//
// Front matter is present only when the first line is exactly "---"; an
// unterminated header is an error.
func Parse(data []byte) (*Skill, error) {
	text := strings.ReplaceAll(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), "\r\n", "\n")

	s := &Skill{Body: text}

	first, rest, found := strings.Cut(text, "\n")
	if strings.TrimSpace(first) == frontMatterDelimiter && found {
		header, body, ok := splitFrontMatter(rest)
		if !ok {
			return nil, errors.New("front matter is not terminated by ---")
		}
		if err := yaml.Unmarshal([]byte(header), s); err != nil {
			return nil, fmt.Errorf("failed to parse front matter: %w", err)
		}
		s.Body = body
	}

	if s.Name == "" {
		s.Name = firstHeading(s.Body)
	}
	return s, nil
}

// Workflow parses the skill body into a workflow document.
func (s *Skill) Workflow() *workflow.Document {
	return workflow.Parse(s.Body)
}

// Matches reports whether key names this skill by name or shortcut, ignoring
// case and a leading slash.
func (s *Skill) Matches(key string) bool {
	key = normalizeKey(key)
	if key == "" {
		return false
	}
	return key == normalizeKey(s.Name) || (s.Shortcut != "" && key == normalizeKey(s.Shortcut))
}

func splitFrontMatter(rest string) (header, body string, ok bool) {
	lines := strings.SplitAfter(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == frontMatterDelimiter {
			return strings.Join(lines[:i], ""), strings.Join(lines[i+1:], ""), true
		}
	}
	return "", "", false
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), "/"))
}
