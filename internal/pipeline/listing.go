package pipeline

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// highlighter renders listings with chroma. Output uses CSS classes rather
// than inline styles so it survives sanitization; HighlightCSS provides the
// matching stylesheet.
type highlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newHighlighter() *highlighter {
	return &highlighter{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(DefaultHighlightStyle),
	}
}

// highlight returns the highlighted listing, or ok=false when the language
// is unknown to chroma or tokenizing fails.
func (h *highlighter) highlight(language, code string) (string, bool) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return "", false
	}
	return b.String(), true
}

// HighlightCSS returns the stylesheet for highlighted listings in the named
// chroma style. Unknown names fall back to chroma's default style.
func HighlightCSS(style string) (string, error) {
	if style == "" {
		style = DefaultHighlightStyle
	}
	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, styles.Get(style)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderListing renders an lstlisting body verbatim. An optional
// [language=X] argument selects highlighting when h is non-nil.
func renderListing(body string, h *highlighter) string {
	var language string
	if strings.HasPrefix(body, "[") {
		if opt, next, ok := MatchOptional(body, 0); ok {
			language = listingLanguage(opt)
			body = body[next:]
		}
	}

	code := trimListing(body)
	if h != nil && language != "" {
		if out, ok := h.highlight(language, code); ok {
			return out
		}
	}
	return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
}

// trimListing drops the rest of the \begin line when it is blank and any
// trailing whitespace, keeping the listing's own indentation.
func trimListing(body string) string {
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && strings.TrimSpace(body[:nl]) == "" {
		body = body[nl+1:]
	}
	return strings.TrimRight(body, " \t\n")
}

// listingLanguage extracts the language key from lstlisting options such as
// "language=Python, numbers=left".
func listingLanguage(options string) string {
	for _, opt := range strings.Split(options, ",") {
		key, value, found := strings.Cut(opt, "=")
		if !found || strings.TrimSpace(key) != "language" {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), "{}")
	}
	return ""
}
