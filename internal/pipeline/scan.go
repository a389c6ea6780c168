package pipeline

// isEscaped reports whether s[i] is preceded by an odd run of backslashes.
// "\{" is a literal brace, "\\{" is a line break followed by a real brace.
func isEscaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// isSpace reports whether c separates a command from its argument.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// isLetter reports whether c may appear in a command name.
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// skipSpace returns the first offset at or after i that is not whitespace.
func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// commandName returns the run of ASCII letters starting at i.
func commandName(s string, i int) string {
	j := i
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	return s[i:j]
}

// MatchBrace extracts the balanced group opening at s[start].
// It returns the content between the braces and the offset just past the
// closing brace. ok is false when s[start] is not '{' or the group never closes.
func MatchBrace(s string, start int) (content string, end int, ok bool) {
	if start < 0 || start >= len(s) || s[start] != '{' {
		return "", start, false
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			if !isEscaped(s, i) {
				depth++
			}
		case '}':
			if isEscaped(s, i) {
				continue
			}
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, true
			}
		}
	}
	return "", start, false
}

// MatchArg is MatchBrace after skipping whitespace, for command arguments
// written on the next line or after a space. On failure end is start.
func MatchArg(s string, start int) (content string, end int, ok bool) {
	content, end, ok = MatchBrace(s, skipSpace(s, start))
	if !ok {
		return "", start, false
	}
	return content, end, true
}

// MatchOptional extracts a whitespace-tolerant "[...]" argument. Brackets
// inside braces do not close it, so "[label={a]b}]" is read whole.
func MatchOptional(s string, start int) (content string, end int, ok bool) {
	i := skipSpace(s, start)
	if i >= len(s) || s[i] != '[' {
		return "", start, false
	}

	depth := 0
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '{':
			if !isEscaped(s, j) {
				depth++
			}
		case '}':
			if !isEscaped(s, j) && depth > 0 {
				depth--
			}
		case ']':
			if depth == 0 {
				return s[i+1 : j], j + 1, true
			}
		}
	}
	return "", start, false
}
