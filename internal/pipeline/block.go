package pipeline

import (
	"regexp"
	"strings"
)

// blockMarker finds the next environment or epigraph. Group 1 holds the
// environment kind and is empty for an epigraph.
var blockMarker = regexp.MustCompile(`\\begin\{(itemize|enumerate|lstlisting|center|tabular)\}|\\epigraph\s*\{`)

const epigraphCommand = `\epigraph`

// blockParser renders a document one block at a time. It holds no state
// besides its options, so one value may serve concurrent calls.
type blockParser struct {
	highlight *highlighter
}

// render writes the blocks of s to out in source order.
//
// Plain text between blocks, and any region that fails to parse as a block,
// is collected in pending and split into paragraphs just before the next
// successful block. An unclosed environment turns the rest of the input into
// paragraph text.
func (p *blockParser) render(out *strings.Builder, s string) {
	var pending strings.Builder
	flush := func() {
		writeParagraphs(out, pending.String())
		pending.Reset()
	}

	pos := 0
	for pos < len(s) {
		loc := blockMarker.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		start, markerEnd := pos+loc[0], pos+loc[1]
		if isEscaped(s, start) {
			// "\\begin" is a line break followed by the word "begin".
			pending.WriteString(s[pos : start+1])
			pos = start + 1
			continue
		}
		pending.WriteString(s[pos:start])

		if loc[2] < 0 {
			next, fragment, ok := epigraph(s, start)
			if !ok {
				pending.WriteString(s[start:next])
				pos = next
				continue
			}
			flush()
			out.WriteString(fragment)
			pos = next
			continue
		}

		kind := s[pos+loc[2] : pos+loc[3]]
		body, after, ok := matchEnvironment(s, markerEnd, kind)
		if !ok {
			pending.WriteString(s[start:])
			pos = len(s)
			break
		}
		flush()
		p.environment(out, kind, body)
		pos = after
	}

	pending.WriteString(s[pos:])
	flush()
}

// environment renders one matched environment body.
func (p *blockParser) environment(out *strings.Builder, kind, body string) {
	switch kind {
	case "itemize", "enumerate":
		out.WriteString(renderList(kind, body))
	case "lstlisting":
		out.WriteString(renderListing(body, p.highlight))
	case "tabular":
		var colspec string
		if spec, next, ok := MatchArg(body, 0); ok {
			colspec = strings.TrimSpace(spec)
			body = body[next:]
		}
		out.WriteString(renderTabular(colspec, body))
	case "center":
		var inner strings.Builder
		p.render(&inner, body)
		if inner.Len() > 0 {
			out.WriteString(`<div class="center">`)
			out.WriteString(inner.String())
			out.WriteString("</div>")
		}
	}
}

// matchEnvironment finds the \end{kind} closing an environment whose body
// starts at from. Nested environments of the same kind are matched by depth.
// Outside listings, markers behind a line break ("\\end") are text.
func matchEnvironment(s string, from int, kind string) (body string, end int, ok bool) {
	open := `\begin{` + kind + `}`
	closing := `\end{` + kind + `}`
	escaped := func(i int) bool { return kind != "lstlisting" && isEscaped(s, i) }

	depth := 1
	for i := from; i < len(s); {
		nextClose := strings.Index(s[i:], closing)
		if nextClose < 0 {
			return "", from, false
		}
		if nextOpen := strings.Index(s[i:], open); nextOpen >= 0 && nextOpen < nextClose {
			if !escaped(i + nextOpen) {
				depth++
			}
			i += nextOpen + len(open)
			continue
		}
		if escaped(i + nextClose) {
			i += nextClose + len(closing)
			continue
		}

		depth--
		if depth == 0 {
			return s[from : i+nextClose], i + nextClose + len(closing), true
		}
		i += nextClose + len(closing)
	}
	return "", from, false
}

// epigraph reads \epigraph{quote}{author} starting at s[start]. On failure,
// next is the offset where reading stopped, so the caller can keep the
// scanned text as paragraph text and resume there.
func epigraph(s string, start int) (next int, fragment string, ok bool) {
	nameEnd := start + len(epigraphCommand)

	quote, afterQuote, ok := MatchArg(s, nameEnd)
	if !ok {
		return nameEnd, "", false
	}
	author, afterAuthor, ok := MatchArg(s, afterQuote)
	if !ok {
		return afterQuote, "", false
	}

	var b strings.Builder
	b.WriteString(`<blockquote class="epigraph"><p>`)
	b.WriteString(inlineText(quote))
	b.WriteString("</p><cite>")
	b.WriteString(inlineText(author))
	b.WriteString("</cite></blockquote>")
	return afterAuthor, b.String(), true
}
