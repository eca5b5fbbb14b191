package rules

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/markup"
)

// linkClusterSize is how many consecutive links make a navigation cluster.
const linkClusterSize = 3

// region is a landmark that every full document should have.
type region struct {
	name string
	tag  string
	role string
}

var requiredRegions = []region{
	{name: "main", tag: "main", role: "main"},
	{name: "banner", tag: "header", role: "banner"},
	{name: "contentinfo", tag: "footer", role: "contentinfo"},
}

func fileRules(opts Options) []Rule {
	return []Rule{
		FileRule(Meta{
			ID:          "heading-order",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagInfoRelations,
			Description: "Heading levels should only increase by one",
			Fix:         "Use the next heading level, or restructure the outline",
			Hint:        "Change the heading level so it is at most one deeper than the previous heading, adjusting styles with CSS instead of heading levels.",
		}, checkHeadingOrder),
		FileRule(Meta{
			ID:          "nav-landmark",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagInfoRelations,
			Description: "Groups of navigation links should be inside a navigation landmark",
			Fix:         "Wrap the link group in a <nav> element",
			Hint:        "Wrap the group of navigation links starting here in a nav element, or give their container role=\"navigation\".",
		}, navLandmarkCheck(opts.NavLinkSpan)),
		FileRule(Meta{
			ID:          "landmark-regions",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagInfoRelations,
			Description: "Documents should have main, banner and contentinfo landmarks",
			Fix:         "Add the missing <main>, <header> or <footer> region",
			Hint:        "Add the missing landmark region around the matching part of the page content.",
		}, checkLandmarkRegions),
		FileRule(Meta{
			ID:          "document-title",
			Severity:    issues.SeverityError,
			WCAG:        wcagPageTitled,
			Description: "Documents must have a non-empty title",
			Fix:         "Add a descriptive <title> inside <head>",
			Hint:        "Add a title element with a short description of the page inside the head element.",
		}, checkDocumentTitle),
		FileRule(Meta{
			ID:          "duplicate-id",
			Severity:    issues.SeverityError,
			WCAG:        wcagParsing,
			Description: "Id attribute values must be unique",
			Fix:         "Rename the repeated id so every id is unique",
			Hint:        "Rename this id to a unique value and update every label, aria reference or script that pointed at it.",
		}, checkDuplicateID),
	}
}

func checkHeadingOrder(in FileInput) []Finding {
	var out []Finding
	previous := 0
	for _, h := range in.Headings {
		if previous > 0 && h.Level > previous+1 {
			out = append(out, Finding{
				Line:           h.Line,
				SourceLineText: h.SourceLineText,
				Message:        fmt.Sprintf("Heading level skipped from h%d to h%d", previous, h.Level),
			})
		}
		previous = h.Level
	}
	return out
}

// navLandmarkCheck flags the first run of three links whose lines fall within span,
// unless the file has a navigation landmark anywhere.
func navLandmarkCheck(span int) FileCheck {
	return func(in FileInput) []Finding {
		var links []*markup.Element
		for _, el := range in.Elements {
			if el.TagName == "nav" || el.Role() == "navigation" {
				return nil
			}
			if el.TagName == "a" && el.Has("href") {
				links = append(links, el)
			}
		}
		for i := 0; i+linkClusterSize-1 < len(links); i++ {
			first, last := links[i], links[i+linkClusterSize-1]
			if last.Line-first.Line <= span {
				return []Finding{{
					Line:           first.Line,
					SourceLineText: first.SourceLineText,
					Message:        fmt.Sprintf("%d links within %d lines are not inside a navigation landmark", linkClusterSize, span),
				}}
			}
		}
		return nil
	}
}

func checkLandmarkRegions(in FileInput) []Finding {
	if !isFullDocument(in) {
		return nil
	}
	var out []Finding
	for _, r := range requiredRegions {
		if hasRegion(in.Elements, r) {
			continue
		}
		out = append(out, Finding{
			Line:           1,
			SourceLineText: markup.LineText(in.Source, 1),
			Message:        fmt.Sprintf("Document has no %s landmark (<%s> or role=%q)", r.name, r.tag, r.role),
		})
	}
	return out
}

func checkDocumentTitle(in FileInput) []Finding {
	if !isFullDocument(in) {
		return nil
	}
	anchor := 1
	for _, el := range in.Elements {
		switch el.TagName {
		case "title":
			if el.HasTextDescendant {
				return nil
			}
		case "head":
			if anchor == 1 {
				anchor = el.Line
			}
		}
	}
	return []Finding{{
		Line:           anchor,
		SourceLineText: markup.LineText(in.Source, anchor),
		Message:        "Document has no title",
	}}
}

func checkDuplicateID(in FileInput) []Finding {
	firstSeen := make(map[string]int)
	var out []Finding
	for _, el := range in.Elements {
		v, ok := el.Attr("id")
		id := strings.TrimSpace(v.Text)
		if !ok || v.Kind != markup.ValueLiteral || id == "" {
			continue
		}
		line, seen := firstSeen[id]
		if !seen {
			firstSeen[id] = el.Line
			continue
		}
		out = append(out, Finding{
			Line:           el.Line,
			SourceLineText: el.SourceLineText,
			Message:        fmt.Sprintf("Duplicate id %q, first used on line %d", id, line),
		})
	}
	return out
}

// isFullDocument reports whether a file looks like a whole page rather than a fragment.
func isFullDocument(in FileInput) bool {
	for _, el := range in.Elements {
		if el.TagName == "html" {
			return true
		}
	}
	return bytes.Contains(bytes.ToLower(in.Source), []byte("<!doctype"))
}

func hasRegion(elements []*markup.Element, r region) bool {
	for _, el := range elements {
		if el.TagName == r.tag || el.Role() == r.role {
			return true
		}
	}
	return false
}
