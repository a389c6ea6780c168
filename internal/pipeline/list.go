package pipeline

import (
	"regexp"
	"strings"
)

var (
	// listToken finds item markers and the list boundaries that change their depth.
	listToken = regexp.MustCompile(`\\(begin|end)\{(?:itemize|enumerate)\}|\\item`)

	// nestedList finds a list opened inside an item.
	nestedList = regexp.MustCompile(`\\begin\{(itemize|enumerate)\}`)
)

// renderList renders an itemize or enumerate body. Only \item markers at the
// body's own nesting level split items; nested lists render inside their item.
func renderList(kind, body string) string {
	items := splitItems(body)

	var b strings.Builder
	for _, item := range items {
		li := renderItem(item)
		if li == "" {
			continue
		}
		b.WriteString("<li>")
		b.WriteString(li)
		b.WriteString("</li>")
	}
	if b.Len() == 0 {
		return ""
	}

	tag := "ul"
	if kind == "enumerate" {
		tag = "ol"
	}
	return "<" + tag + ">" + b.String() + "</" + tag + ">"
}

// splitItems returns the raw text of each item, markers removed. Only
// markers at the body's own nesting level count. Text before the first
// marker belongs to no item and is dropped, so a body without markers has
// no items.
func splitItems(body string) []string {
	var items []string
	depth := 0
	last := -1 // content start of the current item, -1 before the first marker

	for _, m := range listToken.FindAllStringSubmatchIndex(body, -1) {
		if isEscaped(body, m[0]) {
			continue
		}
		if m[2] >= 0 {
			if body[m[2]:m[3]] == "begin" {
				depth++
			} else if depth > 0 {
				depth--
			}
			continue
		}
		// \itemsep and friends are not item markers.
		if m[1] < len(body) && isLetter(body[m[1]]) {
			continue
		}
		if depth != 0 {
			continue
		}

		if last >= 0 {
			items = append(items, body[last:m[0]])
		}
		last = m[1]
	}

	if last < 0 {
		return nil
	}
	return append(items, body[last:])
}

// renderItem renders one item's text, including an optional [label].
func renderItem(item string) string {
	var label string
	if opt, next, ok := MatchOptional(item, 0); ok {
		label = inlineText(opt)
		item = item[next:]
	}

	content := itemBody(item)
	switch {
	case label != "" && content != "":
		return "<strong>" + label + "</strong> " + content
	case label != "":
		return "<strong>" + label + "</strong>"
	default:
		return content
	}
}

// itemBody renders item text, turning nested lists into nested <ul>/<ol>.
func itemBody(s string) string {
	var b strings.Builder
	text := 0 // start of inline text not yet written
	for from := 0; from < len(s); {
		loc := nestedList.FindStringSubmatchIndex(s[from:])
		if loc == nil {
			break
		}
		start, open := from+loc[0], from+loc[1]
		if isEscaped(s, start) {
			from = start + 1
			continue
		}
		kind := s[from+loc[2] : from+loc[3]]
		body, end, ok := matchEnvironment(s, open, kind)
		if !ok {
			break
		}
		b.WriteString(inlineText(s[text:start]))
		b.WriteString(renderList(kind, body))
		text, from = end, end
	}
	b.WriteString(inlineText(s[text:]))
	return b.String()
}
