package markup

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// tree-sitter node types of the TSX grammar
const (
	nodeJSXElement        = "jsx_element"
	nodeJSXOpening        = "jsx_opening_element"
	nodeJSXClosing        = "jsx_closing_element"
	nodeJSXSelfClosing    = "jsx_self_closing_element"
	nodeJSXAttribute      = "jsx_attribute"
	nodeJSXExpression     = "jsx_expression"
	nodeJSXText           = "jsx_text"
	nodeJSXCharReference  = "html_character_reference"
	nodeString            = "string"
	nodeNumber            = "number"
	nodeTemplateString    = "template_string"
	nodeTemplateSubst     = "template_substitution"
	nodeTrue              = "true"
	nodeFalse             = "false"
	nodeComment           = "comment"
	nodeParenthesizedExpr = "parenthesized_expression"
)

// templateBackend normalizes component modules. It parses with the TSX grammar,
// which accepts template markup and optional type annotations, and relies on
// tree-sitter error recovery so a broken region does not hide the rest of the file.
type templateBackend struct{}

func (templateBackend) Elements(ctx context.Context, source []byte) ([]*Element, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsx.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &templateWalker{src: source, lines: newLineIndex(source)}
	w.walk(root)

	if len(w.out) == 0 && root.HasError() {
		return nil, fmt.Errorf("%w: no recoverable markup", ErrParse)
	}
	return w.out, nil
}

type templateWalker struct {
	src   []byte
	lines *lineIndex
	out   []*Element
}

func (w *templateWalker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case nodeJSXElement:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == nodeJSXOpening {
				w.emit(child, false, w.hasContent(n))
			}
			w.walk(child)
		}
		return
	case nodeJSXSelfClosing:
		w.emit(n, true, false)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

// emit records an element-opening node. Fragments have no name and are skipped.
func (w *templateWalker) emit(n *sitter.Node, selfClosing, hasContent bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	el := newElement(name.Content(w.src))
	el.SelfClosing = selfClosing
	el.HasTextDescendant = hasContent

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeJSXAttribute:
			w.readAttribute(el, child)
		case nodeJSXExpression:
			// only spreads can sit in attribute position
			el.HasSpreadAttributes = true
		}
	}

	el.Line, el.Column = w.lines.position(w.openAngle(n, name))
	el.SourceLineText = w.lines.text(el.Line)
	w.out = append(w.out, el)
}

// openAngle returns the offset of the '<' that opens n. The node itself may start
// at the end of the previous token, so the search runs back from the tag name.
func (w *templateWalker) openAngle(n, name *sitter.Node) int {
	start, end := int(n.StartByte()), int(name.StartByte())
	if i := bytes.LastIndexByte(w.src[start:end], '<'); i >= 0 {
		return start + i
	}
	return end
}

func (w *templateWalker) readAttribute(el *Element, n *sitter.Node) {
	if n.NamedChildCount() == 0 {
		return
	}
	name := n.NamedChild(0).Content(w.src)
	if n.NamedChildCount() < 2 {
		el.setAttr(name, BooleanValue())
		return
	}
	el.setAttr(name, w.resolveValue(n.NamedChild(1)))
}

// resolveValue returns the literal text of an attribute value when it is
// statically known and a dynamic placeholder otherwise.
func (w *templateWalker) resolveValue(n *sitter.Node) Value {
	switch n.Type() {
	case nodeString:
		return LiteralValue(unquote(n.Content(w.src)))
	case nodeJSXExpression:
		inner := firstNonComment(n)
		for inner != nil && inner.Type() == nodeParenthesizedExpr {
			inner = firstNonComment(inner)
		}
		if inner == nil {
			return DynamicValue()
		}
		switch inner.Type() {
		case nodeString:
			return LiteralValue(unquote(inner.Content(w.src)))
		case nodeNumber, nodeTrue, nodeFalse:
			return LiteralValue(inner.Content(w.src))
		case nodeTemplateString:
			if !hasNamedChild(inner, nodeTemplateSubst) {
				return LiteralValue(unquote(inner.Content(w.src)))
			}
		}
	}
	return DynamicValue()
}

// hasContent reports whether a jsx_element has children that can render a name:
// non-blank text, nested elements or embedded expressions.
func (w *templateWalker) hasContent(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeJSXText, nodeJSXCharReference:
			if strings.TrimSpace(child.Content(w.src)) != "" {
				return true
			}
		case nodeJSXElement, nodeJSXSelfClosing:
			return true
		case nodeJSXExpression:
			if firstNonComment(child) != nil {
				return true
			}
		}
	}
	return false
}

func firstNonComment(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != nodeComment {
			return child
		}
	}
	return nil
}

func hasNamedChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == typ {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
