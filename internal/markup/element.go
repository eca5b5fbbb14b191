package markup

import (
	"strings"
)

// ValueKind tells how an attribute value was written in the source.
type ValueKind uint8

const (
	// ValueLiteral is a statically known string.
	ValueLiteral ValueKind = iota
	// ValueBoolean is an attribute written without a value.
	ValueBoolean
	// ValueDynamic is an expression whose value cannot be resolved statically.
	ValueDynamic
)

// Value is a resolved attribute value.
type Value struct {
	Kind ValueKind
	Text string
}

// LiteralValue returns a statically known value.
func LiteralValue(text string) Value { return Value{Kind: ValueLiteral, Text: text} }

// BooleanValue returns a presence-only value.
func BooleanValue() Value { return Value{Kind: ValueBoolean} }

// DynamicValue returns a placeholder for an unresolvable expression.
func DynamicValue() Value { return Value{Kind: ValueDynamic} }

// Element is the backend independent shape of one markup tag.
// Elements are built by a Backend and are not modified afterwards.
type Element struct {
	TagName             string // lowercased
	RawTagName          string // as written in the source
	Attributes          map[string]Value
	Presence            map[string]struct{}
	HasSpreadAttributes bool
	HasTextDescendant   bool
	Line                int
	Column              int
	SourceLineText      string
	SelfClosing         bool
}

func newElement(rawTagName string) *Element {
	return &Element{
		TagName:    strings.ToLower(rawTagName),
		RawTagName: rawTagName,
		Attributes: make(map[string]Value),
		Presence:   make(map[string]struct{}),
	}
}

func (e *Element) setAttr(name string, value Value) {
	name = strings.ToLower(name)
	e.Attributes[name] = value
	e.Presence[name] = struct{}{}
}

// attribute names whose template spelling is not just the hyphen-less form
var spellingAliases = map[string][]string{
	"for":   {"htmlfor"},
	"class": {"classname"},
}

// Spellings returns every lowercased spelling a semantic attribute can have across
// backends: the hyphenated hypertext form and the camelCase template form.
func Spellings(name string) []string {
	name = strings.ToLower(name)
	out := []string{name}
	if strings.Contains(name, "-") {
		out = append(out, strings.ReplaceAll(name, "-", ""))
	}
	return append(out, spellingAliases[name]...)
}

// Has reports whether the attribute is present under any of its spellings.
func (e *Element) Has(name string) bool {
	for _, spelling := range Spellings(name) {
		if _, ok := e.Presence[spelling]; ok {
			return true
		}
	}
	return false
}

// Attr returns the attribute value under the first spelling that is present.
func (e *Element) Attr(name string) (Value, bool) {
	for _, spelling := range Spellings(name) {
		if v, ok := e.Attributes[spelling]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Literal returns the statically known text of an attribute. Attributes written
// without a value read as "true". ok is false when the attribute is absent or dynamic.
func (e *Element) Literal(name string) (string, bool) {
	v, ok := e.Attr(name)
	if !ok {
		return "", false
	}
	switch v.Kind {
	case ValueLiteral:
		return v.Text, true
	case ValueBoolean:
		return "true", true
	}
	return "", false
}

// IsDynamic reports whether the attribute is present with an unresolvable value.
func (e *Element) IsDynamic(name string) bool {
	v, ok := e.Attr(name)
	return ok && v.Kind == ValueDynamic
}

// HasAccessibleName reports whether at least one naming source is present:
// aria-label, aria-labelledby, title or rendered content.
func (e *Element) HasAccessibleName() bool {
	return e.Has("aria-label") || e.Has("aria-labelledby") || e.Has("title") || e.HasTextDescendant
}

// Role returns the lowercased literal role attribute, if any.
func (e *Element) Role() string {
	role, _ := e.Literal("role")
	return strings.ToLower(strings.TrimSpace(role))
}
