package fixer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/a11yscan/internal/issues"
)

var sampleIssues = []issues.Issue{
	{RuleID: "img-alt", Line: 4, Message: "Image is missing an alt attribute", SourceLineText: `<img src="a.png">`,
		RepairInstruction: "Line 4: Image is missing an alt attribute. Add an alt attribute."},
	{RuleID: "button-name", Line: 9, Message: "Button has no accessible name",
		RepairInstruction: "Line 9: Button has no accessible name. Give the button text."},
}

func TestSingleInstruction(t *testing.T) {
	got := SingleInstruction("src/App.tsx", sampleIssues[0])

	assert.True(t, strings.HasPrefix(got, "Fix the following accessibility issue in src/App.tsx."))
	assert.Contains(t, got, "[img-alt] Line 4: Image is missing an alt attribute. Add an alt attribute.")
	assert.Contains(t, got, `Source: <img src="a.png">`)
}

func TestBatchInstructionEnumeratesIssues(t *testing.T) {
	got := BatchInstruction("index.html", sampleIssues)

	assert.Contains(t, got, "Fix the following 2 accessibility issues in index.html.")
	assert.Contains(t, got, "1. [img-alt] Line 4:")
	assert.Contains(t, got, "2. [button-name] Line 9:")
	assert.Less(t, strings.Index(got, "1. "), strings.Index(got, "2. "))
}

func TestArguments(t *testing.T) {
	tests := []struct {
		name      string
		templates []string
		want      []string
	}{
		{name: "placeholders", templates: []string{"-p", "{instruction}", "--file={file}"}, want: []string{"-p", "fix it", "--file=a.html"}},
		{name: "appended", templates: []string{"--yes"}, want: []string{"--yes", "fix it"}},
		{name: "no templates", templates: nil, want: []string{"fix it"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Arguments(tt.templates, "fix it", "a.html"))
		})
	}
}

func TestArgumentsDoesNotExpandInsideInstruction(t *testing.T) {
	got := Arguments([]string{"{instruction}"}, "keep {file} literally", "a.html")
	assert.Equal(t, []string{"keep {file} literally"}, got)
}
