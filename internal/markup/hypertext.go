package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// elements that never receive a close event
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// hypertextBackend normalizes hypertext documents from the token stream of a
// streaming tokenizer. Elements are emitted when they close.
type hypertextBackend struct{}

func (hypertextBackend) Elements(ctx context.Context, source []byte) ([]*Element, error) {
	z := html.NewTokenizer(bytes.NewReader(source))
	lines := newLineIndex(source)
	locator := newTagLocator(source)

	var (
		open   []*Element
		out    []*Element
		offset int
		tokens int
	)
	closeTop := func() {
		out = append(out, open[len(open)-1])
		open = open[:len(open)-1]
	}

	for {
		tt := z.Next()
		raw := z.Raw()
		start := offset
		offset += len(raw)

		tokens++
		if tokens%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				for len(open) > 0 {
					closeTop()
				}
				return out, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrParse, z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			el := readTag(z, raw)
			locator.seek(start)
			at, _ := locator.next(el.TagName)
			el.Line, el.Column = lines.position(at)
			el.SourceLineText = lines.text(el.Line)
			el.SelfClosing = tt == html.SelfClosingTagToken

			if len(open) > 0 {
				open[len(open)-1].HasTextDescendant = true
			}
			if el.SelfClosing || voidElements[el.TagName] {
				out = append(out, el)
				continue
			}
			open = append(open, el)

		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(open) - 1; i >= 0; i-- {
				if open[i].TagName != string(name) {
					continue
				}
				for len(open) > i {
					closeTop()
				}
				break
			}

		case html.TextToken:
			if len(open) > 0 && len(bytes.TrimSpace(z.Text())) > 0 {
				open[len(open)-1].HasTextDescendant = true
			}
		}
	}
}

// readTag builds an element from the current start tag token. Attribute keys
// come back lowercased from the tokenizer; valueless attributes read as "".
// The first occurrence of a repeated attribute wins.
func readTag(z *html.Tokenizer, raw []byte) *Element {
	// TagName lowercases the token buffer in place, so take the raw name first.
	written := rawTagName(raw)
	name, hasAttr := z.TagName()
	if written == "" {
		written = string(name)
	}
	el := newElement(written)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if _, seen := el.Presence[string(key)]; seen {
			continue
		}
		el.setAttr(string(key), LiteralValue(string(val)))
	}
	return el
}

func rawTagName(raw []byte) string {
	if len(raw) < 2 || raw[0] != '<' {
		return ""
	}
	end := 1
	for end < len(raw) && !isTagNameEnd(raw[end]) {
		end++
	}
	return string(raw[1:end])
}
