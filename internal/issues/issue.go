package issues

import (
	"fmt"
	"sort"
	"strings"
)

// Severity is the importance of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rank orders severities so that errors compare higher than warnings.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	}
	return 0
}

// ParseSeverity converts a user supplied level into a Severity.
func ParseSeverity(level string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	}
	return "", fmt.Errorf("unknown severity %q", level)
}

// Issue is a single accessibility defect found in a file.
// Issues are plain values and never point back at the element that produced them.
type Issue struct {
	RuleID            string   `json:"rule_id"`
	Severity          Severity `json:"severity"`
	Message           string   `json:"message"`
	Line              int      `json:"line"`
	SourceLineText    string   `json:"source_line"`
	Fix               string   `json:"fix"`
	RepairInstruction string   `json:"repair_instruction"`
}

// File groups the issues found in one file.
type File struct {
	Path   string  `json:"path"`
	Issues []Issue `json:"issues"`
}

// SortByLine orders issues by ascending line, keeping detection order for equal lines.
func SortByLine(list []Issue) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Line < list[j].Line
	})
}

// CountAtLeast returns the number of issues whose severity is at least min.
func CountAtLeast(list []Issue, min Severity) int {
	count := 0
	for _, is := range list {
		if is.Severity.Rank() >= min.Rank() {
			count++
		}
	}
	return count
}

// Count returns the number of issues with exactly the given severity.
func Count(list []Issue, severity Severity) int {
	count := 0
	for _, is := range list {
		if is.Severity == severity {
			count++
		}
	}
	return count
}
