package pipeline

import (
	"regexp"
	"strings"
)

var (
	// A whitespace run holding at least two newlines ends a paragraph.
	paragraphBreak = regexp.MustCompile(`\s*\n\s*\n\s*`)

	// A single newline inside a paragraph is a soft wrap.
	softWrap = regexp.MustCompile(`\s*\n\s*`)
)

// foldLines joins soft-wrapped lines with a single space.
func foldLines(s string) string {
	return softWrap.ReplaceAllString(s, " ")
}

// writeParagraphs splits text on blank lines and writes one <p> per
// segment that renders to something visible.
func writeParagraphs(b *strings.Builder, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	for _, segment := range paragraphBreak.Split(text, -1) {
		inner := inlineText(segment)
		if strings.TrimSpace(inner) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(inner)
		b.WriteString("</p>")
	}
}
