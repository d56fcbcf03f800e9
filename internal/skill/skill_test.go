package skill

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillflow/internal/workflow"
)

const deploySkill = `---
name: deploy
description: Build and deploy the web app
shortcut: /ship
tags: [release, web]
---
# Deploy

Builds the app and triggers a deploy.

## Workflow

1. [TERMINAL] npm run build - Build project
2. [API] POST https://example.com/deploy {"v":"1.0"} - Trigger deploy
3. [WAIT] time 10 - Pause
`

func TestParse_FrontMatter(t *testing.T) {
	s, err := Parse([]byte(deploySkill))

	require.NoError(t, err)
	assert.Equal(t, "deploy", s.Name)
	assert.Equal(t, "Build and deploy the web app", s.Description)
	assert.Equal(t, "/ship", s.Shortcut)
	assert.Equal(t, []string{"release", "web"}, s.Tags)
	assert.True(t, len(s.Body) > 0 && s.Body[0] == '#', "body starts after the closing delimiter")

	doc := s.Workflow()
	require.Len(t, doc.Steps, 3)
	assert.Equal(t, workflow.KindTerminal, doc.Steps[0].Kind())
	assert.Equal(t, "Trigger deploy", doc.Steps[1].Label)
}

func TestParse_NoFrontMatter(t *testing.T) {
	s, err := Parse([]byte("# Restart Service\n\n## Workflow\n1. [TERMINAL] systemctl restart app\n"))

	require.NoError(t, err)
	assert.Equal(t, "Restart Service", s.Name)
	assert.Empty(t, s.Shortcut)
	assert.Len(t, s.Workflow().Steps, 1)
}

func TestParse_CRLFAndBOM(t *testing.T) {
	data := "\xef\xbb\xbf---\r\nname: crlf\r\n---\r\n## Workflow\r\n1. [WEB] https://example.com\r\n"

	s, err := Parse([]byte(data))

	require.NoError(t, err)
	assert.Equal(t, "crlf", s.Name)
	assert.Len(t, s.Workflow().Steps, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unterminated front matter", data: "---\nname: x\n# Title\n"},
		{name: "invalid yaml", data: "---\nname: [unclosed\n---\n# Title\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_NameFallsBackToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup-logs.md")
	require.NoError(t, os.WriteFile(path, []byte("## Workflow\n1. [TERMINAL] rm -rf logs\n"), 0644))

	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "cleanup-logs", s.Name)
	assert.Equal(t, path, s.Path)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestSkill_Matches(t *testing.T) {
	s := &Skill{Name: "Deploy", Shortcut: "/ship"}

	assert.True(t, s.Matches("deploy"))
	assert.True(t, s.Matches("/deploy"))
	assert.True(t, s.Matches("ship"))
	assert.True(t, s.Matches("/SHIP"))
	assert.False(t, s.Matches("build"))
	assert.False(t, s.Matches(""))
}

func writeSkill(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "deploy.md", deploySkill)
	writeSkill(t, dir, "ops/backup.md", "---\nname: backup\n---\n## Workflow\n1. [DB] SELECT 1\n")
	writeSkill(t, dir, "notes.txt", "not a skill")

	c, err := LoadDir(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"backup", "deploy"}, c.Names())

	s, err := c.Find("/ship")
	require.NoError(t, err)
	assert.Equal(t, "deploy", s.Name)

	_, err = c.Find("unknown")
	assert.True(t, errors.Is(err, ErrSkillNotFound))
}

func TestLoadDir_Missing(t *testing.T) {
	c, err := LoadDir(filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.Empty(t, c.Skills)
}

func TestLoadDir_DuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "a.md", "---\nname: deploy\n---\n")
	writeSkill(t, dir, "b.md", "---\nname: other\nshortcut: /deploy\n---\n")

	_, err := LoadDir(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy")
}
