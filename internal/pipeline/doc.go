// Package pipeline implements the TeX-subset to HTML conversion stages.
//
// Conversion runs in a single synchronous pass:
//   - line ending normalization
//   - block parsing (paragraphs, itemize/enumerate, lstlisting, center,
//     tabular, epigraph)
//   - inline parsing (styles, sizes, math spans, links, typography)
//
// The output is assembled, unsanitized HTML. Callers pass it through the
// sanitize package before handing it to anything that renders markup.
// Malformed input never fails: unresolved regions degrade to escaped text.
package pipeline
