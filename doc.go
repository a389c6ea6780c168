// Package tex2html converts a constrained subset of TeX markup to sanitized HTML.
//
// # Quick Start
//
//	out := tex2html.Render(`\textbf{Bold} and $x^2$`, tex2html.RenderOptions{})
//	// <p><strong>Bold</strong> and $x^2$</p>
//
// Render never fails. Malformed markup (an unclosed environment, a command
// missing its argument) degrades to escaped text, and every result passes an
// allowlist sanitizer before it is returned.
//
// # Supported Markup
//
//   - paragraphs separated by blank lines, soft-wrapped lines folded
//   - \textbf, \textit, \texttt, \emph, \underline, \sout, \textsc and the
//     nine size commands (\tiny ... \Huge)
//   - \url{...} and \href{...}{...} (http, https, mailto, # and /path only)
//   - itemize and enumerate lists, nested, with optional \item[label]
//   - tabular with \multicolumn and \multirow
//   - lstlisting, center and \epigraph{quote}{author}
//   - inline $...$ and display $$...$$ math, passed through verbatim
//
// # Conversion Pipeline
//
//  1. Line ending normalization
//  2. Block parsing (environments, epigraphs, paragraphs)
//  3. Inline parsing (commands, math spans, typography)
//  4. Sanitization against the tag and attribute allowlist
//
// # Typesetting
//
// Math is left as TeX source for a client-side engine. A Renderer built
// with WithTypesetter forwards typeset requests to a Scheduler, which
// coalesces the requests made within one tick into a single pass and loads
// the engine once:
//
//	r := tex2html.NewRenderer(tex2html.WithTypesetter(loader))
//	defer r.Close()
//	html := r.Render(src, tex2html.RenderOptions{Typeset: true, TypesetTarget: []string{"#preview"}})
//
// The pass runs after Render returns and never changes its result.
//
// To typeset server side, a Session hosts MathJax in headless Chrome (go-rod)
// and returns the typeset fragment with its stylesheet:
//
//	s := tex2html.NewSession()
//	defer s.Close()
//	res, err := s.Typeset(ctx, html, nil)
//
// For batch work, SessionPool hands out one Session per worker.
package tex2html
