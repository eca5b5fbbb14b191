package markup

import (
	"context"
	"sort"
)

// Heading is a heading element reduced to what sequence checks need.
type Heading struct {
	Level          int
	Line           int
	SourceLineText string
}

// Document is the normalized view of one source file.
type Document struct {
	Path     string
	Kind     Kind
	Source   []byte
	Elements []*Element
	Headings []Heading
}

// Parse normalizes source text with the backend selected by the path's kind.
// On failure the returned document is still usable and carries zero elements.
func Parse(ctx context.Context, path string, source []byte) (*Document, error) {
	doc := &Document{Path: path, Kind: KindFromPath(path), Source: source}

	backend, err := BackendFor(doc.Kind)
	if err != nil {
		return doc, err
	}
	elements, err := backend.Elements(ctx, source)
	if err != nil {
		return doc, err
	}

	doc.Elements = elements
	doc.Headings = Headings(elements)
	return doc, nil
}

// Headings filters h1..h6 elements and orders them by source position.
func Headings(elements []*Element) []Heading {
	type positioned struct {
		Heading
		column int
	}
	var found []positioned
	for _, el := range elements {
		level := HeadingLevel(el.TagName)
		if level == 0 {
			continue
		}
		found = append(found, positioned{
			Heading: Heading{Level: level, Line: el.Line, SourceLineText: el.SourceLineText},
			column:  el.Column,
		})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Line != found[j].Line {
			return found[i].Line < found[j].Line
		}
		return found[i].column < found[j].column
	})

	headings := make([]Heading, 0, len(found))
	for _, h := range found {
		headings = append(headings, h.Heading)
	}
	return headings
}

// HeadingLevel returns 1..6 for heading tag names and 0 otherwise.
func HeadingLevel(tagName string) int {
	if len(tagName) == 2 && tagName[0] == 'h' && tagName[1] >= '1' && tagName[1] <= '6' {
		return int(tagName[1] - '0')
	}
	return 0
}

// InSourceOrder returns a copy of elements sorted by line and column.
func InSourceOrder(elements []*Element) []*Element {
	sorted := make([]*Element, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		return sorted[i].Column < sorted[j].Column
	})
	return sorted
}
