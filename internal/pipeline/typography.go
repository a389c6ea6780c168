package pipeline

import "regexp"

// Precompiled typography patterns, applied to plain text before escaping.
var (
	// <<quoted>> becomes «quoted»
	guillemetPattern = regexp.MustCompile(`(?s)<<(.*?)>>`)

	// `x' (one character) becomes 'x'
	singleQuotePattern = regexp.MustCompile("`(.)'")

	// ~--- and "--- become a spaced em dash
	emDashPattern = regexp.MustCompile(` ?[~"]--- ?`)
)

// typography applies the text substitutions TeX authors expect.
// It never runs on math spans or on generated markup.
func typography(s string) string {
	s = guillemetPattern.ReplaceAllString(s, "«$1»")
	s = singleQuotePattern.ReplaceAllString(s, "'$1'")
	s = emDashPattern.ReplaceAllString(s, " — ")
	return s
}
