package pipeline

import (
	"html"
	"strings"

	"github.com/alnah/go-tex2html/internal/sanitize"
)

// styleTag is the element a style or size command renders to.
type styleTag struct {
	tag   string
	class string
}

// styleCommands maps every one-argument formatting command to its element.
// Size commands keep their size as a class so a stylesheet can tell them apart.
var styleCommands = map[string]styleTag{
	"bf":        {tag: "strong"},
	"textbf":    {tag: "strong"},
	"it":        {tag: "em"},
	"textit":    {tag: "em"},
	"t":         {tag: "code"},
	"tt":        {tag: "code"},
	"texttt":    {tag: "code"},
	"emph":      {tag: "u"},
	"underline": {tag: "u"},
	"sout":      {tag: "s"},
	"textsc":    {tag: "span", class: "tex-smallcaps"},

	"tiny":         {tag: "span", class: "tex-size-tiny"},
	"scriptsize":   {tag: "span", class: "tex-size-scriptsize"},
	"footnotesize": {tag: "span", class: "tex-size-footnotesize"},
	"small":        {tag: "span", class: "tex-size-small"},
	"large":        {tag: "span", class: "tex-size-large"},
	"Large":        {tag: "span", class: "tex-size-Large"},
	"LARGE":        {tag: "span", class: "tex-size-LARGE"},
	"huge":         {tag: "span", class: "tex-size-huge"},
	"Huge":         {tag: "span", class: "tex-size-Huge"},
}

// escapedQuote is what the TeX quote ligatures `` and '' render to.
var escapedQuote = html.EscapeString(`"`)

// inlineParser accumulates the HTML for one run of inline text.
// Plain characters collect in plain and are flushed (typography, then
// escaping) whenever a math span, command, or break is emitted.
type inlineParser struct {
	out   strings.Builder
	plain strings.Builder
}

// parseInline converts a run of text with no block structure to HTML.
func parseInline(s string) string {
	var p inlineParser
	p.parse(s)
	return p.out.String()
}

// inlineText trims s, folds its line breaks, and parses it as inline text.
func inlineText(s string) string {
	return parseInline(foldLines(strings.TrimSpace(s)))
}

func (p *inlineParser) parse(s string) {
	for i := 0; i < len(s); {
		c := s[i]
		var next byte
		if i+1 < len(s) {
			next = s[i+1]
		}

		switch {
		case c == '$':
			if n := mathSpan(s, i); n > 0 {
				p.emit(html.EscapeString(s[i : i+n]))
				i += n
				continue
			}
			p.plain.WriteByte(c)
			i++

		case c == '\\' && next == '\\':
			p.emit("<br/>")
			i += 2

		case c == '\\' && next == '$':
			p.plain.WriteString(`\$`)
			i += 2

		case c == '\\' && isLetter(next):
			name := commandName(s, i+1)
			end := i + 1 + len(name)
			if out, after, ok := command(s, name, end); ok {
				p.emit(out)
				i = after
				continue
			}
			p.plain.WriteString(s[i:end])
			i = end

		case (c == '`' || c == '\'') && next == c:
			p.emit(escapedQuote)
			i += 2

		default:
			p.plain.WriteByte(c)
			i++
		}
	}
	p.flush()
}

// emit flushes pending plain text and appends ready-made HTML.
func (p *inlineParser) emit(fragment string) {
	p.flush()
	p.out.WriteString(fragment)
}

func (p *inlineParser) flush() {
	if p.plain.Len() == 0 {
		return
	}
	p.out.WriteString(html.EscapeString(typography(p.plain.String())))
	p.plain.Reset()
}

// mathSpan returns the length of the math span opening at s[i], including
// its delimiters, or 0 when the span never closes. A "$" preceded by an odd
// run of backslashes does not close a span.
func mathSpan(s string, i int) int {
	if strings.HasPrefix(s[i:], "$$") {
		for j := i + 2; j+1 < len(s); j++ {
			if s[j] == '$' && s[j+1] == '$' && !isEscaped(s, j) {
				return j + 2 - i
			}
		}
		return 0
	}

	for j := i + 1; j < len(s); j++ {
		if s[j] != '$' || isEscaped(s, j) {
			continue
		}
		if j+1 < len(s) && s[j+1] == '$' {
			continue
		}
		return j + 1 - i
	}
	return 0
}

// command renders the command name whose arguments start at offset end.
// ok is false when name is unknown or its arguments are missing; the caller
// then emits the command text literally.
func command(s, name string, end int) (out string, after int, ok bool) {
	if style, found := styleCommands[name]; found {
		arg, next, ok := MatchArg(s, end)
		if !ok {
			return "", end, false
		}
		return wrapStyle(style, parseInline(arg)), next, true
	}

	switch name {
	case "url":
		target, next, ok := MatchArg(s, end)
		if !ok {
			return "", end, false
		}
		target = strings.TrimSpace(target)
		return anchor(target, html.EscapeString(target)), next, true

	case "href":
		target, next, ok := MatchArg(s, end)
		if !ok {
			return "", end, false
		}
		caption, next, ok := MatchArg(s, next)
		if !ok {
			return "", end, false
		}
		return anchor(strings.TrimSpace(target), parseInline(caption)), next, true
	}

	return "", end, false
}

func wrapStyle(style styleTag, inner string) string {
	open := "<" + style.tag + ">"
	if style.class != "" {
		open = "<" + style.tag + ` class="` + style.class + `">`
	}
	return open + inner + "</" + style.tag + ">"
}

// anchor builds a link that opens in a new browsing context. An unsafe
// target produces an anchor without href rather than dropping the caption.
func anchor(target, caption string) string {
	var b strings.Builder
	b.WriteString("<a")
	if href, ok := sanitize.SafeURL(target); ok {
		b.WriteString(` href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`"`)
	}
	b.WriteString(` target="_blank" rel="noopener noreferrer">`)
	b.WriteString(caption)
	b.WriteString("</a>")
	return b.String()
}
