package pipeline

import (
	"regexp"
	"strings"
)

// crlfOrCR matches the line endings normalized before parsing.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// HTMLConverter abstracts TeX to HTML conversion.
type HTMLConverter interface {
	ToHTML(content string) string
}

// TexConverter converts the supported TeX subset to HTML.
// Its output is assembled markup that still has to pass the sanitizer.
type TexConverter struct {
	blocks blockParser
}

// ConverterOption configures a TexConverter.
type ConverterOption func(*TexConverter)

// WithListingHighlight enables chroma highlighting for listings that
// declare a language.
func WithListingHighlight() ConverterOption {
	return func(c *TexConverter) {
		c.blocks.highlight = newHighlighter()
	}
}

// NewTexConverter creates a TexConverter. Without options, listings render
// as plain preformatted text.
func NewTexConverter(opts ...ConverterOption) *TexConverter {
	c := &TexConverter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToHTML converts content to an HTML fragment. It never fails: markup it
// cannot parse is rendered as escaped text.
func (c *TexConverter) ToHTML(content string) string {
	content = normalizeLineEndings(content)

	var b strings.Builder
	b.Grow(len(content) + len(content)/4)
	c.blocks.render(&b, content)
	return b.String()
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
