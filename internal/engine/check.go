package engine

import (
	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/markup"
	"github.com/scan-io-git/a11yscan/internal/rules"
)

// Check runs every rule of the registry against a normalized document and
// returns the issues sorted by line. Element rules run first, element by element
// in rule order, then each file rule runs once over the whole document.
func Check(reg *rules.Registry, doc *markup.Document) []issues.Issue {
	all := reg.Rules()
	var found []issues.Issue

	for _, el := range doc.Elements {
		for _, rule := range all {
			if rule.Kind() != rules.KindElement {
				continue
			}
			if is := rule.Check(el); is != nil {
				found = append(found, *is)
			}
		}
	}

	for _, rule := range all {
		if rule.Kind() != rules.KindFile {
			continue
		}
		found = append(found, rule.CheckFile(doc.Elements, doc.Headings, doc.Source)...)
	}

	issues.SortByLine(found)
	return found
}
