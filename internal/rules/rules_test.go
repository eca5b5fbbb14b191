package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/markup"
)

func runRule(t *testing.T, id, path, src string) []issues.Issue {
	t.Helper()
	doc, err := markup.Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)

	rule, ok := Default(Options{}).Lookup(id)
	require.True(t, ok, "rule %s not registered", id)

	if rule.Kind() == KindFile {
		return rule.CheckFile(doc.Elements, doc.Headings, doc.Source)
	}
	var out []issues.Issue
	for _, el := range doc.Elements {
		if is := rule.Check(el); is != nil {
			out = append(out, *is)
		}
	}
	return out
}

func TestElementRules(t *testing.T) {
	tests := []struct {
		rule string
		path string
		src  string
		want int
	}{
		{"img-alt", "a.html", `<img src="a.png">`, 1},
		{"img-alt", "a.html", `<img src="a.png" alt="">`, 0},
		{"img-alt", "a.tsx", `const a = <img src={s} {...rest} />;`, 0},
		{"img-alt", "a.jsx", `const a = <img src={s} />;`, 1},
		{"area-alt", "a.html", `<map><area href="/a"></map>`, 1},
		{"area-alt", "a.html", `<map><area href="/a" alt="Home"></map>`, 0},
		{"input-image-alt", "a.html", `<input type="image" src="go.png">`, 1},
		{"input-image-alt", "a.html", `<input type="image" src="go.png" alt="Go">`, 0},
		{"redundant-alt", "a.html", `<img alt="Photo of the team">`, 1},
		{"redundant-alt", "a.html", `<img alt="The team">`, 0},
		{"redundant-alt", "a.html", `<img alt="Our photographer">`, 0},
		{"button-name", "a.html", `<button></button>`, 1},
		{"button-name", "a.html", `<button aria-label="Close"></button>`, 0},
		{"button-name", "a.html", `<button><svg></svg></button>`, 0},
		{"button-name", "a.tsx", `const b = <button {...props}></button>;`, 1},
		{"button-name", "a.tsx", `const b = <button>{label}</button>;`, 0},
		{"link-name", "a.html", `<a href="/x"></a>`, 1},
		{"link-name", "a.html", `<a name="top"></a>`, 0},
		{"link-name", "a.html", `<a href="/x" title="Home"></a>`, 0},
		{"empty-heading", "a.html", `<h2></h2>`, 1},
		{"empty-heading", "a.html", `<h2>Intro</h2>`, 0},
		{"form-label", "a.html", `<input type="text">`, 1},
		{"form-label", "a.html", `<input id="q">`, 0},
		{"form-label", "a.html", `<input type="hidden">`, 0},
		{"form-label", "a.html", `<textarea></textarea>`, 1},
		{"form-label", "a.html", `<select aria-label="Size"></select>`, 0},
		{"form-label", "a.tsx", `const i = <input {...field} />;`, 0},
		{"iframe-title", "a.html", `<iframe src="/x"></iframe>`, 1},
		{"iframe-title", "a.html", `<iframe src="/x" title="Map"></iframe>`, 0},
		{"html-lang", "a.html", `<html><body></body></html>`, 1},
		{"html-lang", "a.html", `<html lang="en"><body></body></html>`, 0},
		{"html-lang", "a.html", `<html lang=""><body></body></html>`, 1},
		{"tabindex-positive", "a.html", `<div tabindex="3"></div>`, 1},
		{"tabindex-positive", "a.html", `<div tabindex="0"></div>`, 0},
		{"tabindex-positive", "a.html", `<div tabindex="abc"></div>`, 0},
		{"tabindex-positive", "a.tsx", `const d = <div tabIndex={order} />;`, 0},
		{"tabindex-positive", "a.tsx", `const d = <div tabIndex={2} />;`, 1},
		{"aria-hidden-focusable", "a.html", `<button aria-hidden="true">x</button>`, 1},
		{"aria-hidden-focusable", "a.html", `<div aria-hidden="true"></div>`, 0},
		{"aria-hidden-focusable", "a.html", `<div aria-hidden="true" tabindex="0"></div>`, 1},
		{"aria-hidden-focusable", "a.html", `<a aria-hidden="true" href="/" tabindex="-1">x</a>`, 0},
		{"click-key-events", "a.html", `<div onclick="go()">x</div>`, 1},
		{"click-key-events", "a.html", `<div onclick="go()" onkeydown="go()">x</div>`, 0},
		{"click-key-events", "a.html", `<button onclick="go()">x</button>`, 0},
		{"click-key-events", "a.tsx", `const d = <div onClick={go}>x</div>;`, 1},
		{"no-autofocus", "a.html", `<input id="a" autofocus>`, 1},
		{"no-autofocus", "a.tsx", `const i = <input id="a" autoFocus={false} />;`, 0},
		{"media-autoplay", "a.html", `<video autoplay src="v.mp4"></video>`, 1},
		{"media-autoplay", "a.html", `<video autoplay muted src="v.mp4"></video>`, 0},
		{"anchor-valid-href", "a.html", `<a href="#">Top</a>`, 1},
		{"anchor-valid-href", "a.html", `<a href="javascript:void(0)">Go</a>`, 1},
		{"anchor-valid-href", "a.html", `<a href="#main">Skip</a>`, 0},
		{"meta-viewport-zoom", "a.html", `<meta name="viewport" content="width=device-width, user-scalable=no">`, 1},
		{"meta-viewport-zoom", "a.html", `<meta name="viewport" content="width=device-width, maximum-scale=1.0">`, 1},
		{"meta-viewport-zoom", "a.html", `<meta name="viewport" content="width=device-width, initial-scale=1">`, 0},
		{"meta-refresh", "a.html", `<meta http-equiv="refresh" content="30">`, 1},
		{"meta-refresh", "a.html", `<meta http-equiv="refresh" content="0; url=/new">`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.src, func(t *testing.T) {
			got := runRule(t, tt.rule, tt.path, tt.src)
			assert.Len(t, got, tt.want)
			for _, is := range got {
				assert.Equal(t, tt.rule, is.RuleID)
			}
		})
	}
}

func TestSpreadExemptsPresenceRulesOnly(t *testing.T) {
	src := `const a = (
  <div>
    <img {...imgProps} />
    <button {...buttonProps}></button>
  </div>
);`

	assert.Empty(t, runRule(t, "img-alt", "a.tsx", src))

	got := runRule(t, "button-name", "a.tsx", src)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Line)
}

func TestHeadingOrder(t *testing.T) {
	t.Run("skipped level", func(t *testing.T) {
		got := runRule(t, "heading-order", "a.html", "<h1>A</h1>\n<h2>B</h2>\n<h4>C</h4>")

		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].Line)
		assert.Equal(t, "<h4>C</h4>", got[0].SourceLineText)
		assert.Contains(t, got[0].Message, "h2 to h4")
	})

	t.Run("no leading h1", func(t *testing.T) {
		got := runRule(t, "heading-order", "a.html", "<h2>A</h2>\n<h3>B</h3>\n<h4>C</h4>")
		assert.Empty(t, got)
	})

	t.Run("going back up is fine", func(t *testing.T) {
		got := runRule(t, "heading-order", "a.html", "<h1>A</h1>\n<h2>B</h2>\n<h3>C</h3>\n<h1>D</h1>\n<h2>E</h2>")
		assert.Empty(t, got)
	})

	t.Run("nested headings use source order", func(t *testing.T) {
		got := runRule(t, "heading-order", "a.html", "<h1>A\n<h2>B</h2>\n</h1>\n<h3>C</h3>")
		assert.Empty(t, got)
	})
}

func TestNavLandmark(t *testing.T) {
	cluster := "<div>\n<a href=\"/1\">One</a>\n<a href=\"/2\">Two</a>\n<a href=\"/3\">Three</a>\n<a href=\"/4\">Four</a>\n</div>"

	t.Run("one issue for the first cluster", func(t *testing.T) {
		got := runRule(t, "nav-landmark", "a.html", cluster)

		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].Line)
	})

	t.Run("landmark anywhere suppresses the check", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 10; i++ {
			b.WriteString("<a href=\"/x\">x</a>\n")
		}
		b.WriteString("<nav></nav>\n")

		assert.Empty(t, runRule(t, "nav-landmark", "a.html", b.String()))
		assert.Empty(t, runRule(t, "nav-landmark", "a.html", `<ul role="navigation"></ul>`+"\n"+cluster))
	})

	t.Run("spread out links", func(t *testing.T) {
		src := "<a href=\"/1\">1</a>" + strings.Repeat("\n", 4) + "<a href=\"/2\">2</a>" + strings.Repeat("\n", 4) + "<a href=\"/3\">3</a>"
		assert.Empty(t, runRule(t, "nav-landmark", "a.html", src))
	})

	t.Run("anchors without href do not count", func(t *testing.T) {
		assert.Empty(t, runRule(t, "nav-landmark", "a.html", "<a>1</a>\n<a>2</a>\n<a>3</a>"))
	})
}

func TestNavLandmarkSpanIsConfigurable(t *testing.T) {
	doc, err := markup.Parse(context.Background(), "a.html", []byte("<a href=\"/1\">1</a>\n\n\n<a href=\"/2\">2</a>\n\n\n<a href=\"/3\">3</a>"))
	require.NoError(t, err)

	wide, _ := Default(Options{NavLinkSpan: 6}).Lookup("nav-landmark")
	narrow, _ := Default(Options{NavLinkSpan: 2}).Lookup("nav-landmark")

	assert.Len(t, wide.CheckFile(doc.Elements, doc.Headings, doc.Source), 1)
	assert.Empty(t, narrow.CheckFile(doc.Elements, doc.Headings, doc.Source))
}

func TestLandmarkRegions(t *testing.T) {
	page := "<!DOCTYPE html>\n<html lang=\"en\"><head><title>x</title></head><body><div role=\"main\"></div></body></html>"

	got := runRule(t, "landmark-regions", "a.html", page)
	require.Len(t, got, 2)
	for _, is := range got {
		assert.Equal(t, 1, is.Line)
		assert.Equal(t, "<!DOCTYPE html>", is.SourceLineText)
	}
	assert.Contains(t, got[0].Message, "banner")
	assert.Contains(t, got[1].Message, "contentinfo")

	assert.Empty(t, runRule(t, "landmark-regions", "a.html", "<div><p>fragment</p></div>"))
}

func TestDocumentTitle(t *testing.T) {
	assert.Len(t, runRule(t, "document-title", "a.html", "<!DOCTYPE html>\n<html lang=\"en\">\n<head></head>\n<body></body></html>"), 1)
	assert.Len(t, runRule(t, "document-title", "a.html", "<html><head><title> </title></head></html>"), 1)
	assert.Empty(t, runRule(t, "document-title", "a.html", "<html><head><title>Home</title></head></html>"))
	assert.Empty(t, runRule(t, "document-title", "a.html", "<div></div>"))

	got := runRule(t, "document-title", "a.html", "<!DOCTYPE html>\n<html lang=\"en\">\n<head></head>\n<body></body></html>")
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Line)
}

func TestDuplicateID(t *testing.T) {
	got := runRule(t, "duplicate-id", "a.html", "<div id=\"a\"></div>\n<span id=\"a\"></span>\n<p id=\"b\"></p>\n<p id=\"a\"></p>")

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, 4, got[1].Line)
	assert.Contains(t, got[0].Message, "first used on line 1")

	assert.Empty(t, runRule(t, "duplicate-id", "a.tsx", "const a = <div><p id={x} /><p id={x} /></div>;"))
}

func TestIssueCarriesRuleMetadata(t *testing.T) {
	got := runRule(t, "img-alt", "a.html", `<img src="a.png">`)
	require.Len(t, got, 1)

	is := got[0]
	rule, _ := Default(Options{}).Lookup("img-alt")
	assert.Equal(t, issues.SeverityError, is.Severity)
	assert.Equal(t, rule.Fix, is.Fix)
	assert.Equal(t, `<img src="a.png">`, is.SourceLineText)
	assert.True(t, strings.HasPrefix(is.RepairInstruction, "Line 1: Image is missing an alt attribute. "))
	assert.True(t, strings.HasSuffix(is.RepairInstruction, rule.Hint))
}

func TestRuleShapesAreExclusive(t *testing.T) {
	reg := Default(Options{})
	img, _ := reg.Lookup("img-alt")
	order, _ := reg.Lookup("heading-order")

	el := &markup.Element{TagName: "h3", Line: 1}
	assert.Nil(t, order.Check(el))
	assert.Nil(t, img.CheckFile([]*markup.Element{el}, nil, nil))
}
