package fixer

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/a11yscan/internal/issues"
)

const closingNote = "Only change what is needed to resolve the listed issues and keep the existing formatting of the file."

// SingleInstruction asks the agent to repair one issue.
func SingleInstruction(path string, is issues.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fix the following accessibility issue in %s.\n\n", path)
	fmt.Fprintf(&b, "[%s] %s\n", is.RuleID, is.RepairInstruction)
	if is.SourceLineText != "" {
		fmt.Fprintf(&b, "Source: %s\n", is.SourceLineText)
	}
	b.WriteString("\n")
	b.WriteString(closingNote)
	return b.String()
}

// BatchInstruction asks the agent to repair every issue of a file in one pass.
func BatchInstruction(path string, list []issues.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fix the following %d accessibility issues in %s.\n\n", len(list), path)
	for i, is := range list {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, is.RuleID, is.RepairInstruction)
	}
	b.WriteString("\n")
	b.WriteString(closingNote)
	return b.String()
}

// Arguments expands the placeholders of the argument templates. When no template
// mentions the instruction it is appended as the last argument.
func Arguments(templates []string, instruction, path string) []string {
	args := make([]string, 0, len(templates)+1)
	placed := false
	for _, tmpl := range templates {
		if strings.Contains(tmpl, PlaceholderInstruction) {
			placed = true
		}
		arg := strings.ReplaceAll(tmpl, PlaceholderFile, path)
		arg = strings.ReplaceAll(arg, PlaceholderInstruction, instruction)
		args = append(args, arg)
	}
	if !placed {
		args = append(args, instruction)
	}
	return args
}
