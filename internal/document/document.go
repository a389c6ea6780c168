package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-tex2html/internal/assets"
)

// Sentinel errors for page building.
var (
	ErrTemplateParse = errors.New("page template parsing failed")
	ErrPageRender    = errors.New("page template rendering failed")
)

// DefaultTitle is used when a page has no title.
const DefaultTitle = "Document"

// Page holds the values rendered into the page template.
type Page struct {
	Title string
	Lang  string

	// Body is a sanitized fragment and is inserted without escaping.
	Body string

	// ScriptURL, when set, loads the math engine in the page so the
	// document typesets itself when opened.
	ScriptURL string
}

// templateData is what the page template sees.
type templateData struct {
	Title     string
	Lang      string
	Body      template.HTML
	ScriptURL string
}

// Builder renders pages from one parsed template.
// It is safe for concurrent use.
type Builder struct {
	tmpl *template.Template
	css  CSSInjector
}

// NewBuilder loads and parses the named page template.
func NewBuilder(loader assets.AssetLoader, templateName string) (*Builder, error) {
	if templateName == "" {
		templateName = assets.DefaultTemplateName
	}
	content, err := loader.LoadTemplate(templateName)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(templateName).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	return &Builder{tmpl: tmpl, css: &CSSInjection{}}, nil
}

// Build renders a standalone document around page.Body and injects css.
func (b *Builder) Build(ctx context.Context, page Page, css string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = DefaultTitle
	}

	var buf bytes.Buffer
	err := b.tmpl.Execute(&buf, templateData{
		Title:     title,
		Lang:      page.Lang,
		Body:      template.HTML(page.Body), // #nosec G203 -- body is sanitized by the caller
		ScriptURL: page.ScriptURL,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}

	return b.css.InjectCSS(ctx, buf.String(), css), nil
}
