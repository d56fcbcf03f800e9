package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Line
	}{
		{
			name: "no heading",
			text: "# Skill\n1. [TERMINAL] ls\n",
			want: nil,
		},
		{
			name: "heading is case insensitive",
			text: "  ##   WORKFLOW  \n1. [TERMINAL] ls\n",
			want: []Line{{Number: 2, Text: "1. [TERMINAL] ls"}},
		},
		{
			name: "stops at level 2 heading but not level 3",
			text: "## Workflow\n1. [TERMINAL] a\n### Detail\n2. [TERMINAL] b\n## Other\n3. [TERMINAL] c\n",
			want: []Line{
				{Number: 2, Text: "1. [TERMINAL] a ### Detail"},
				{Number: 4, Text: "2. [TERMINAL] b"},
			},
		},
		{
			name: "stops at horizontal rule",
			text: "## Workflow\n1. [TERMINAL] a\n---\n2. [TERMINAL] b\n",
			want: []Line{{Number: 2, Text: "1. [TERMINAL] a"}},
		},
		{
			name: "stops at code fence",
			text: "## Workflow\n1. [TERMINAL] a\n```bash\n2. [TERMINAL] b\n```\n",
			want: []Line{{Number: 2, Text: "1. [TERMINAL] a"}},
		},
		{
			name: "stops at spaced horizontal rules",
			text: "## Workflow\n1. [TERMINAL] a\n- - -\n2. [TERMINAL] b\n",
			want: []Line{{Number: 2, Text: "1. [TERMINAL] a"}},
		},
		{
			name: "stops at spaced asterisk rule",
			text: "## Workflow\n1. [TERMINAL] a\n * * * *\n2. [TERMINAL] b\n",
			want: []Line{{Number: 2, Text: "1. [TERMINAL] a"}},
		},
		{
			name: "stops at tilde fence",
			text: "## Workflow\n1. [TERMINAL] a\n~~~\n2. [TERMINAL] b\n~~~\n",
			want: []Line{{Number: 2, Text: "1. [TERMINAL] a"}},
		},
		{
			name: "two dashes continue the step",
			text: "## Workflow\n1. [TERMINAL] a\n- -\n",
			want: []Line{{Number: 2, Text: "1. [TERMINAL] a - -"}},
		},
		{
			name: "joins continuation lines",
			text: "## Workflow\n1. [API] POST https://x/y\n  {\"a\":1}\n  - call y\n",
			want: []Line{{Number: 2, Text: "1. [API] POST https://x/y {\"a\":1} - call y"}},
		},
		{
			name: "discards text before first step and blank lines",
			text: "## Workflow\n\nRun these in order:\n\n1. [TERMINAL] a\n\n2. [TERMINAL] b\n",
			want: []Line{
				{Number: 5, Text: "1. [TERMINAL] a"},
				{Number: 7, Text: "2. [TERMINAL] b"},
			},
		},
		{
			name: "windows line endings",
			text: "## Workflow\r\n1. [TERMINAL] a\r\n2. [TERMINAL] b\r\n",
			want: []Line{
				{Number: 2, Text: "1. [TERMINAL] a"},
				{Number: 3, Text: "2. [TERMINAL] b"},
			},
		},
		{
			name: "ordinal values are not reordered",
			text: "## Workflow\n9. [TERMINAL] first\n1. [TERMINAL] second\n",
			want: []Line{
				{Number: 2, Text: "9. [TERMINAL] first"},
				{Number: 3, Text: "1. [TERMINAL] second"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}
