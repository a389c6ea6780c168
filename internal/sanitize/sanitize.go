// Package sanitize enforces the HTML allowlist applied to every rendered document.
//
// The sanitizer is the security boundary of the converter: it does not trust the
// code that assembled its input. Tags outside the allowlist are removed (their
// text content is kept, escaped), attributes outside a tag's allowlist are
// stripped, and the surviving attribute values are re-validated: link targets
// through SafeURL, table spans as positive integers, class names as plain tokens.
package sanitize

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Sanitize returns fragment reduced to the allowlisted tags and attributes.
// Text is re-escaped canonically, comments and doctypes are dropped, and the
// result is stable: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(fragment string) string {
	if fragment == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(fragment))

	z := xhtml.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			// Reading from a string, the only error is io.EOF.
			return b.String()
		case xhtml.TextToken:
			b.WriteString(html.EscapeString(string(z.Text())))
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			writeStartTag(&b, z)
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if _, ok := allowedTags[tag]; ok && tag != "br" {
				b.WriteString("</" + tag + ">")
			}
		}
	}
}

// writeStartTag emits the current start tag with its filtered attributes,
// or nothing when the tag is not allowlisted.
func writeStartTag(b *strings.Builder, z *xhtml.Tokenizer) {
	name, hasAttr := z.TagName()
	tag := string(name)

	attrs, ok := allowedTags[tag]
	if !ok {
		return
	}
	if tag == "br" {
		b.WriteString("<br/>")
		return
	}

	b.WriteString("<")
	b.WriteString(tag)

	seen := make(map[string]bool)
	newContext := false
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()

		attr := string(key)
		if seen[attr] {
			continue
		}
		seen[attr] = true

		v, ok := attrs[attr]
		if !ok {
			continue
		}
		clean, ok := v.check(string(val))
		if !ok {
			continue
		}
		if v == blankTarget {
			newContext = true
		}
		writeAttr(b, attr, clean)
	}

	if newContext {
		writeAttr(b, "rel", linkRel)
	}
	b.WriteString(">")
}

func writeAttr(b *strings.Builder, key, value string) {
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}
