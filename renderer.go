package tex2html

import (
	"html"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tex2html/internal/pipeline"
	"github.com/alnah/go-tex2html/internal/sanitize"
)

// Compile-time interface implementation check.
var _ pipeline.HTMLConverter = (*pipeline.TexConverter)(nil)

// Renderer converts TeX-subset text to sanitized HTML and forwards typeset
// requests to its Scheduler. Create with NewRenderer; a Renderer is safe
// for concurrent use.
type Renderer struct {
	converter pipeline.HTMLConverter
	scheduler *Scheduler // nil without a typesetter
	log       logrus.FieldLogger
}

// NewRenderer creates a Renderer. Without WithTypesetter, typeset requests
// are dropped.
func NewRenderer(opts ...Option) *Renderer {
	cfg := newConfig(opts)

	var convOpts []pipeline.ConverterOption
	if cfg.highlight {
		convOpts = append(convOpts, pipeline.WithListingHighlight())
	}

	r := &Renderer{
		converter: pipeline.NewTexConverter(convOpts...),
		log:       cfg.logger,
	}
	if cfg.loader != nil {
		r.scheduler = newScheduler(cfg.loader, cfg)
	}
	return r
}

// Render converts text to sanitized HTML. It never fails: malformed markup
// degrades to escaped text. When opts.Typeset is set, a typeset pass is
// scheduled; the pass runs later and never changes the returned string.
func (r *Renderer) Render(text string, opts RenderOptions) string {
	out := r.convert(text)

	if opts.Typeset {
		if r.scheduler == nil {
			r.log.Debug("typeset requested without a typesetter")
		} else {
			r.scheduler.Schedule(opts.TypesetTarget...)
		}
	}
	return out
}

// convert runs the pipeline and the sanitizer. An internal panic falls back
// to the escaped input as one paragraph.
func (r *Renderer) convert(text string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("render panicked, falling back to escaped text: %v", rec)
			out = escapedParagraph(text)
		}
	}()
	return sanitize.Sanitize(r.converter.ToHTML(text))
}

func escapedParagraph(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return "<p>" + html.EscapeString(text) + "</p>"
}

// Scheduler returns the typeset scheduler, or nil without a typesetter.
func (r *Renderer) Scheduler() *Scheduler {
	return r.scheduler
}

// Close stops the scheduler and waits for running passes.
func (r *Renderer) Close() {
	if r.scheduler != nil {
		r.scheduler.Close()
	}
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Render converts text with a process-wide default Renderer. The default
// Renderer has no typesetter, so opts.Typeset only produces a debug log.
func Render(text string, opts RenderOptions) string {
	defaultOnce.Do(func() {
		defaultRenderer = NewRenderer()
	})
	return defaultRenderer.Render(text, opts)
}
