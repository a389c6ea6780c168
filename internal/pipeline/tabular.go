package pipeline

import (
	"errors"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-tex2html/internal/sanitize"
)

var (
	// Horizontal rules carry no cell content.
	ruleDirective = regexp.MustCompile(`\\(?:hline|toprule|midrule|bottomrule)\b|\\cline\s*\{[^}]*\}`)

	// "\\[2pt]" leaves its spacing argument at the start of the next row.
	rowSpacing = regexp.MustCompile(`^\s*\[[^\]]*\]`)
)

// tableCell is one placed cell of a tabular environment.
type tableCell struct {
	col     int
	colspan int
	rowspan int
	text    string
}

// layoutTable splits a tabular body into rows of placed cells.
//
// Columns still covered by a rowspan from an earlier row are skipped when
// placing cells. The ledger maps a column to the number of rows, counting the
// current one, that it stays reserved; it is decremented at the start of
// every rendered row after the first.
func layoutTable(body string) [][]tableCell {
	var rows [][]tableCell
	ledger := make(map[int]int)

	for i, row := range splitTopLevel(body, '\\') {
		if i > 0 {
			row = rowSpacing.ReplaceAllString(row, "")
		}
		row = ruleDirective.ReplaceAllString(row, "")
		if strings.TrimSpace(row) == "" {
			continue
		}

		if len(rows) > 0 {
			for col, n := range ledger {
				if n <= 1 {
					delete(ledger, col)
				} else {
					ledger[col] = n - 1
				}
			}
		}

		var cells []tableCell
		col := 0
		for _, raw := range splitTopLevel(row, '&') {
			for ledger[col] > 0 {
				col++
			}
			text, colspan, rowspan := peelSpans(raw)
			if rowspan > 1 {
				for k := col; k < col+colspan; k++ {
					ledger[k] = rowspan
				}
			}
			cells = append(cells, tableCell{col: col, colspan: colspan, rowspan: rowspan, text: text})
			col += colspan
		}
		rows = append(rows, cells)
	}
	return rows
}

// renderTabular renders a tabular environment. The column spec is kept as
// an informational attribute only.
func renderTabular(colspec, body string) string {
	rows := layoutTable(body)
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<table")
	if colspec != "" {
		b.WriteString(` data-colspec="`)
		b.WriteString(html.EscapeString(colspec))
		b.WriteString(`"`)
	}
	b.WriteString("><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td")
			if cell.colspan > 1 {
				b.WriteString(` colspan="` + strconv.Itoa(cell.colspan) + `"`)
			}
			if cell.rowspan > 1 {
				b.WriteString(` rowspan="` + strconv.Itoa(cell.rowspan) + `"`)
			}
			b.WriteString(">")
			b.WriteString(inlineText(cell.text))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// splitTopLevel splits s at sep outside braces. For sep '\\' the separator
// is the two-character row break "\\"; any other escaped character, such as
// "\&" or "\{", is skipped whole.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			if sep == '\\' && depth == 0 && i+1 < len(s) && s[i+1] == '\\' {
				parts = append(parts, s[last:i])
				last = i + 2
			}
			i++
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// peelSpans removes nested \multicolumn and \multirow wrappers from a cell,
// multiplying their span counts, and returns the remaining text. Both spans
// are clamped to sanitize.MaxSpan.
func peelSpans(cell string) (text string, colspan, rowspan int) {
	text = strings.TrimSpace(cell)
	colspan, rowspan = 1, 1

	for {
		switch {
		case hasCommand(text, "multicolumn"):
			n, inner, ok := spanArgs(text, len(`\multicolumn`))
			if !ok {
				return text, colspan, rowspan
			}
			colspan = min(colspan*n, sanitize.MaxSpan)
			text = inner
		case hasCommand(text, "multirow"):
			n, inner, ok := spanArgs(text, len(`\multirow`))
			if !ok {
				return text, colspan, rowspan
			}
			rowspan = min(rowspan*n, sanitize.MaxSpan)
			text = inner
		default:
			return text, colspan, rowspan
		}
	}
}

// hasCommand reports whether s starts with the command \name.
func hasCommand(s, name string) bool {
	if !strings.HasPrefix(s, `\`+name) {
		return false
	}
	end := len(name) + 1
	return end >= len(s) || !isLetter(s[end])
}

// spanArgs reads {count}{spec}{content} after a span command, skipping the
// optional arguments \multirow accepts. Text after the wrapper stays in the cell.
func spanArgs(s string, i int) (n int, inner string, ok bool) {
	_, i, _ = MatchOptional(s, i)
	count, i, ok := MatchArg(s, i)
	if !ok {
		return 0, "", false
	}
	_, i, ok = MatchArg(s, i)
	if !ok {
		return 0, "", false
	}
	_, i, _ = MatchOptional(s, i)
	content, i, ok := MatchArg(s, i)
	if !ok {
		return 0, "", false
	}

	return spanCount(count), strings.TrimSpace(content + s[i:]), true
}

// spanCount reads a span argument. Non-numeric or non-positive counts read
// as 1; counts past sanitize.MaxSpan, overflowing ones included, are clamped.
func spanCount(arg string) int {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	switch {
	case errors.Is(err, strconv.ErrRange) && n > 0:
		return sanitize.MaxSpan
	case err != nil || n < 1:
		return 1
	}
	return min(n, sanitize.MaxSpan)
}
