package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/markup"
)

const (
	wcagNonTextContent = "1.1.1"
	wcagInfoRelations  = "1.3.1"
	wcagAudioControl   = "1.4.2"
	wcagResizeText     = "1.4.4"
	wcagKeyboard       = "2.1.1"
	wcagTimingAdjust   = "2.2.1"
	wcagPageTitled     = "2.4.2"
	wcagFocusOrder     = "2.4.3"
	wcagLinkPurpose    = "2.4.4"
	wcagHeadingsLabels = "2.4.6"
	wcagLanguageOfPage = "3.1.1"
	wcagParsing        = "4.1.1"
	wcagNameRoleValue  = "4.1.2"
)

var redundantAltWords = regexp.MustCompile(`(?i)\b(image|picture|photo)\b`)

// input types that never need a visible label
var unlabelledInputTypes = map[string]bool{
	"hidden": true, "submit": true, "button": true, "reset": true, "image": true,
}

// tags that receive keyboard focus without a tabindex
var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true, "textarea": true,
	"option": true, "summary": true, "details": true, "label": true,
}

func elementRules() []Rule {
	return []Rule{
		ElementRule(Meta{
			ID:          "img-alt",
			Severity:    issues.SeverityError,
			WCAG:        wcagNonTextContent,
			Description: "Images must have an alt attribute",
			Fix:         `Add alt="<description>" to the image, or alt="" if it is decorative`,
			Hint:        "Add an alt attribute that describes the image; use an empty alt for purely decorative images.",
			Basis:       BasisPresence,
		}, checkImgAlt),
		ElementRule(Meta{
			ID:          "area-alt",
			Severity:    issues.SeverityError,
			WCAG:        wcagNonTextContent,
			Description: "Image map areas must have alternative text",
			Fix:         `Add alt="<link purpose>" to the area`,
			Hint:        "Add an alt attribute to the area element describing where the region links to.",
			Basis:       BasisPresence,
		}, checkAreaAlt),
		ElementRule(Meta{
			ID:          "input-image-alt",
			Severity:    issues.SeverityError,
			WCAG:        wcagNonTextContent,
			Description: "Image buttons must have alternative text",
			Fix:         `Add alt="<action>" to the image input`,
			Hint:        "Add an alt attribute to the image input that names the action the button performs.",
			Basis:       BasisPresence,
		}, checkInputImageAlt),
		ElementRule(Meta{
			ID:          "redundant-alt",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagNonTextContent,
			Description: "Alt text should not contain words like image, picture or photo",
			Fix:         "Remove the redundant word from the alt text",
			Hint:        "Rewrite the alt text so it describes the content without words such as image, picture or photo.",
			Basis:       BasisValue,
		}, checkRedundantAlt),
		ElementRule(Meta{
			ID:          "button-name",
			Severity:    issues.SeverityError,
			WCAG:        wcagNameRoleValue,
			Description: "Buttons must have an accessible name",
			Fix:         "Give the button visible text or an aria-label",
			Hint:        "Give the button visible text content, or add an aria-label describing its action.",
			Basis:       BasisText,
		}, checkButtonName),
		ElementRule(Meta{
			ID:          "link-name",
			Severity:    issues.SeverityError,
			WCAG:        wcagLinkPurpose,
			Description: "Links must have an accessible name",
			Fix:         "Give the link descriptive text or an aria-label",
			Hint:        "Add link text that describes the destination, or an aria-label when the link only contains an icon.",
			Basis:       BasisText,
		}, checkLinkName),
		ElementRule(Meta{
			ID:          "empty-heading",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagHeadingsLabels,
			Description: "Headings must not be empty",
			Fix:         "Add text to the heading or remove it",
			Hint:        "Put descriptive text inside the heading, or remove the heading element if it is only used for styling.",
			Basis:       BasisText,
		}, checkEmptyHeading),
		ElementRule(Meta{
			ID:          "form-label",
			Severity:    issues.SeverityError,
			WCAG:        wcagInfoRelations,
			Description: "Form controls must have an associated label",
			Fix:         "Associate a <label for> with the control's id, or add aria-label",
			Hint:        "Give the form control an id and a matching label element, or add an aria-label.",
			Basis:       BasisPresence,
		}, checkFormLabel),
		ElementRule(Meta{
			ID:          "iframe-title",
			Severity:    issues.SeverityError,
			WCAG:        wcagNameRoleValue,
			Description: "Frames must have a title",
			Fix:         `Add title="<frame purpose>" to the iframe`,
			Hint:        "Add a title attribute to the iframe that describes its content.",
			Basis:       BasisPresence,
		}, checkIframeTitle),
		ElementRule(Meta{
			ID:          "html-lang",
			Severity:    issues.SeverityError,
			WCAG:        wcagLanguageOfPage,
			Description: "The html element must declare a language",
			Fix:         `Add lang="<language code>" to the html element`,
			Hint:        `Add a lang attribute with the page's primary language code, for example lang="en", to the html element.`,
			Basis:       BasisPresence,
		}, checkHTMLLang),
		ElementRule(Meta{
			ID:          "tabindex-positive",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagFocusOrder,
			Description: "Avoid positive tabindex values",
			Fix:         `Use tabindex="0" or reorder the markup`,
			Hint:        "Replace the positive tabindex with 0 and let the document order define the focus order.",
			Basis:       BasisValue,
		}, checkTabindexPositive),
		ElementRule(Meta{
			ID:          "aria-hidden-focusable",
			Severity:    issues.SeverityError,
			WCAG:        wcagNameRoleValue,
			Description: "Focusable elements must not be hidden from assistive technology",
			Fix:         `Remove aria-hidden or make the element unfocusable with tabindex="-1"`,
			Hint:        `Remove aria-hidden="true" from the focusable element, or take it out of the tab order with tabindex="-1".`,
			Basis:       BasisValue,
		}, checkAriaHiddenFocusable),
		ElementRule(Meta{
			ID:          "click-key-events",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagKeyboard,
			Description: "Click handlers on non-interactive elements need keyboard handlers",
			Fix:         "Use a button, or add a key handler together with role and tabindex",
			Hint:        "Replace the element with a button, or add a keyboard handler plus a role and tabindex so keyboard users can trigger the action.",
			Basis:       BasisPresence,
		}, checkClickKeyEvents),
		ElementRule(Meta{
			ID:          "no-autofocus",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagFocusOrder,
			Description: "Avoid autofocus",
			Fix:         "Remove the autofocus attribute",
			Hint:        "Remove the autofocus attribute so focus starts at the top of the page.",
			Basis:       BasisValue,
		}, checkNoAutofocus),
		ElementRule(Meta{
			ID:          "media-autoplay",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagAudioControl,
			Description: "Autoplaying media must be muted",
			Fix:         "Remove autoplay or add muted",
			Hint:        "Remove the autoplay attribute from the media element, or add muted and visible controls.",
			Basis:       BasisPresence,
		}, checkMediaAutoplay),
		ElementRule(Meta{
			ID:          "anchor-valid-href",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagKeyboard,
			Description: "Links must point to a real destination",
			Fix:         "Use a button for actions, or link to a real URL",
			Hint:        "Replace the placeholder href with a real destination, or turn the element into a button if it triggers an action.",
			Basis:       BasisValue,
		}, checkAnchorValidHref),
		ElementRule(Meta{
			ID:          "meta-viewport-zoom",
			Severity:    issues.SeverityError,
			WCAG:        wcagResizeText,
			Description: "The viewport must allow zooming",
			Fix:         "Remove user-scalable=no and keep maximum-scale at 2 or above",
			Hint:        "Edit the viewport meta content so it does not set user-scalable=no and any maximum-scale is at least 2.",
			Basis:       BasisValue,
		}, checkMetaViewportZoom),
		ElementRule(Meta{
			ID:          "meta-refresh",
			Severity:    issues.SeverityWarning,
			WCAG:        wcagTimingAdjust,
			Description: "Pages must not refresh or redirect on a timer",
			Fix:         "Remove the timed refresh, or redirect on the server",
			Hint:        "Remove the meta refresh element; use a server side redirect or let the user trigger the update.",
			Basis:       BasisValue,
		}, checkMetaRefresh),
	}
}

func checkImgAlt(el *markup.Element) (string, bool) {
	if el.TagName != "img" || el.Has("alt") {
		return "", false
	}
	return "Image is missing an alt attribute", true
}

func checkAreaAlt(el *markup.Element) (string, bool) {
	if el.TagName != "area" || el.Has("alt") || el.Has("aria-label") || el.Has("aria-labelledby") {
		return "", false
	}
	return "Image map area is missing alternative text", true
}

func checkInputImageAlt(el *markup.Element) (string, bool) {
	if el.TagName != "input" || inputType(el) != "image" {
		return "", false
	}
	if el.Has("alt") || el.Has("aria-label") || el.Has("aria-labelledby") || el.Has("title") {
		return "", false
	}
	return "Image input is missing alternative text", true
}

func checkRedundantAlt(el *markup.Element) (string, bool) {
	if el.TagName != "img" {
		return "", false
	}
	alt, ok := el.Literal("alt")
	if !ok {
		return "", false
	}
	word := redundantAltWords.FindString(alt)
	if word == "" {
		return "", false
	}
	return "Alt text contains the redundant word \"" + strings.ToLower(word) + "\"", true
}

func checkButtonName(el *markup.Element) (string, bool) {
	if el.TagName != "button" || el.HasAccessibleName() {
		return "", false
	}
	return "Button has no accessible name", true
}

func checkLinkName(el *markup.Element) (string, bool) {
	if el.TagName != "a" || !el.Has("href") || el.HasAccessibleName() {
		return "", false
	}
	return "Link has no accessible name", true
}

func checkEmptyHeading(el *markup.Element) (string, bool) {
	level := markup.HeadingLevel(el.TagName)
	if level == 0 || el.HasAccessibleName() {
		return "", false
	}
	return "Heading " + el.TagName + " is empty", true
}

func checkFormLabel(el *markup.Element) (string, bool) {
	switch el.TagName {
	case "input":
		if el.IsDynamic("type") || unlabelledInputTypes[inputType(el)] {
			return "", false
		}
	case "select", "textarea":
	default:
		return "", false
	}
	if el.Has("id") || el.Has("aria-label") || el.Has("aria-labelledby") || el.Has("title") {
		return "", false
	}
	return "Form control <" + el.TagName + "> has no associated label", true
}

func checkIframeTitle(el *markup.Element) (string, bool) {
	if el.TagName != "iframe" || el.Has("title") {
		return "", false
	}
	return "Iframe is missing a title", true
}

func checkHTMLLang(el *markup.Element) (string, bool) {
	if el.TagName != "html" {
		return "", false
	}
	if !el.Has("lang") {
		return "Document is missing a lang attribute", true
	}
	if lang, ok := el.Literal("lang"); ok && strings.TrimSpace(lang) == "" {
		return "Document lang attribute is empty", true
	}
	return "", false
}

func checkTabindexPositive(el *markup.Element) (string, bool) {
	n, ok := tabindex(el)
	if !ok || n <= 0 {
		return "", false
	}
	return "Element has a positive tabindex of " + strconv.Itoa(n), true
}

func checkAriaHiddenFocusable(el *markup.Element) (string, bool) {
	hidden, ok := el.Literal("aria-hidden")
	if !ok || strings.ToLower(strings.TrimSpace(hidden)) != "true" {
		return "", false
	}
	if !focusable(el) {
		return "", false
	}
	return "Focusable <" + el.TagName + "> is hidden with aria-hidden", true
}

func checkClickKeyEvents(el *markup.Element) (string, bool) {
	if !el.Has("onclick") || interactiveTags[el.TagName] {
		return "", false
	}
	if el.Has("onkeydown") || el.Has("onkeyup") || el.Has("onkeypress") {
		return "", false
	}
	return "Click handler on <" + el.TagName + "> has no keyboard equivalent", true
}

func checkNoAutofocus(el *markup.Element) (string, bool) {
	v, ok := el.Literal("autofocus")
	if !el.Has("autofocus") || (ok && strings.EqualFold(v, "false")) {
		return "", false
	}
	return "Element uses autofocus", true
}

func checkMediaAutoplay(el *markup.Element) (string, bool) {
	if el.TagName != "video" && el.TagName != "audio" {
		return "", false
	}
	v, ok := el.Literal("autoplay")
	if !el.Has("autoplay") || (ok && strings.EqualFold(v, "false")) || el.Has("muted") {
		return "", false
	}
	return "Media element autoplays with sound", true
}

func checkAnchorValidHref(el *markup.Element) (string, bool) {
	if el.TagName != "a" {
		return "", false
	}
	href, ok := el.Literal("href")
	if !ok {
		return "", false
	}
	href = strings.TrimSpace(href)
	switch {
	case href == "#":
		return "Link href is a bare #", true
	case strings.HasPrefix(strings.ToLower(href), "javascript:"):
		return "Link href is a javascript: URL", true
	}
	return "", false
}

func checkMetaViewportZoom(el *markup.Element) (string, bool) {
	if el.TagName != "meta" {
		return "", false
	}
	name, _ := el.Literal("name")
	if !strings.EqualFold(strings.TrimSpace(name), "viewport") {
		return "", false
	}
	content, ok := el.Literal("content")
	if !ok {
		return "", false
	}
	props := viewportProperties(content)
	switch props["user-scalable"] {
	case "no", "0":
		return "Viewport disables zooming with user-scalable", true
	}
	if raw, ok := props["maximum-scale"]; ok {
		if scale, err := strconv.ParseFloat(raw, 64); err == nil && scale < 2 {
			return "Viewport limits zoom with maximum-scale=" + raw, true
		}
	}
	return "", false
}

func checkMetaRefresh(el *markup.Element) (string, bool) {
	if el.TagName != "meta" {
		return "", false
	}
	equiv, _ := el.Literal("http-equiv")
	if !strings.EqualFold(strings.TrimSpace(equiv), "refresh") {
		return "", false
	}
	content, ok := el.Literal("content")
	if !ok {
		return "", false
	}
	delay := strings.TrimSpace(content)
	if i := strings.IndexAny(delay, ";,"); i >= 0 {
		delay = strings.TrimSpace(delay[:i])
	}
	seconds, err := strconv.ParseFloat(delay, 64)
	if err != nil || seconds <= 0 {
		return "", false
	}
	return "Page refreshes automatically after " + delay + " seconds", true
}

func inputType(el *markup.Element) string {
	t, ok := el.Literal("type")
	if !ok {
		return "text"
	}
	return strings.ToLower(strings.TrimSpace(t))
}

// tabindex returns the numeric tabindex. ok is false for absent, dynamic or non-numeric values.
func tabindex(el *markup.Element) (int, bool) {
	raw, ok := el.Literal("tabindex")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

func focusable(el *markup.Element) bool {
	if n, ok := tabindex(el); ok {
		return n >= 0
	}
	if el.Has("disabled") {
		return false
	}
	switch el.TagName {
	case "a", "area":
		return el.Has("href")
	case "input":
		return inputType(el) != "hidden"
	case "button", "select", "textarea", "iframe", "summary":
		return true
	}
	return false
}

// viewportProperties parses "key=value" pairs separated by commas or semicolons.
func viewportProperties(content string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.FieldsFunc(content, func(r rune) bool { return r == ',' || r == ';' }) {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		props[strings.ToLower(strings.TrimSpace(key))] = strings.ToLower(strings.TrimSpace(value))
	}
	return props
}
