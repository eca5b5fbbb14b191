package rules

import (
	"fmt"

	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/markup"
)

// Kind selects which of the two check shapes a rule carries.
type Kind uint8

const (
	KindElement Kind = iota + 1 // evaluated once per element
	KindFile                    // evaluated once per file over all elements
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindFile:
		return "file"
	}
	return "unknown"
}

// Basis describes what an element rule looks at. It decides whether spread
// attributes make the rule inconclusive.
type Basis uint8

const (
	// BasisPresence rules report a missing attribute. Spread elements are exempt.
	BasisPresence Basis = iota
	// BasisText rules report missing rendered content. Spreading cannot add text.
	BasisText
	// BasisValue rules report an attribute value that is already visible in the source.
	BasisValue
)

// Meta holds the stable, user visible description of a rule.
type Meta struct {
	ID          string
	Severity    issues.Severity
	WCAG        string
	Description string
	Fix         string // suggestion shown to humans
	Hint        string // repair hint given to the fixing agent
	Basis       Basis
}

// ElementCheck returns a message when the element violates the rule.
type ElementCheck func(el *markup.Element) (string, bool)

// FileInput is everything a file check may look at. Elements are in source order.
type FileInput struct {
	Elements []*markup.Element
	Headings []markup.Heading
	Source   []byte
}

// Finding is a violation located by a file check.
type Finding struct {
	Line           int
	SourceLineText string
	Message        string
}

// FileCheck returns every violation found across a file.
type FileCheck func(in FileInput) []Finding

// Rule is a detector with exactly one of the two check shapes.
type Rule struct {
	Meta
	kind    Kind
	element ElementCheck
	file    FileCheck
}

// ElementRule builds an element scoped rule.
func ElementRule(meta Meta, check ElementCheck) Rule {
	return Rule{Meta: meta, kind: KindElement, element: check}
}

// FileRule builds a file scoped rule.
func FileRule(meta Meta, check FileCheck) Rule {
	return Rule{Meta: meta, kind: KindFile, file: check}
}

// Kind reports which check shape the rule carries.
func (r Rule) Kind() Kind {
	return r.kind
}

// Check runs an element rule against one element. It returns nil when the
// element passes, when the rule is inconclusive, or when r is a file rule.
func (r Rule) Check(el *markup.Element) *issues.Issue {
	if r.kind != KindElement || el == nil {
		return nil
	}
	if r.Basis == BasisPresence && el.HasSpreadAttributes {
		return nil
	}
	message, violated := r.element(el)
	if !violated {
		return nil
	}
	is := r.issue(el.Line, el.SourceLineText, message)
	return &is
}

// CheckFile runs a file rule over a whole file. Element rules return nil.
func (r Rule) CheckFile(elements []*markup.Element, headings []markup.Heading, source []byte) []issues.Issue {
	if r.kind != KindFile {
		return nil
	}
	in := FileInput{
		Elements: markup.InSourceOrder(elements),
		Headings: headings,
		Source:   source,
	}
	var out []issues.Issue
	for _, f := range r.file(in) {
		out = append(out, r.issue(f.Line, f.SourceLineText, f.Message))
	}
	return out
}

func (r Rule) issue(line int, sourceLine, message string) issues.Issue {
	return issues.Issue{
		RuleID:            r.ID,
		Severity:          r.Severity,
		Message:           message,
		Line:              line,
		SourceLineText:    sourceLine,
		Fix:               r.Fix,
		RepairInstruction: fmt.Sprintf("Line %d: %s. %s", line, message, r.Hint),
	}
}
