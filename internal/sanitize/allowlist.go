package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

// validator identifies how an attribute value is checked.
type validator int

const (
	anyText       validator = iota // kept as-is, re-escaped on output
	classTokens                    // space-separated CSS class names
	safeURL                        // must pass SafeURL
	blankTarget                    // must equal "_blank"
	positiveInt                    // decimal > 0, re-serialized canonically
)

// classPattern restricts class attributes to plain identifier tokens.
var classPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+( [A-Za-z0-9_-]+)*$`)

// MaxSpan caps colspan/rowspan values. Larger spans are clamped to it,
// matching what browsers do with the attribute.
const MaxSpan = 1000

// allowedTags maps each permitted tag to its permitted attributes.
// A tag absent from this map is dropped; an attribute absent from its
// tag's map is stripped.
var allowedTags = map[string]map[string]validator{
	"p":      nil,
	"br":     nil,
	"strong": nil,
	"em":     nil,
	"u":      nil,
	"s":      nil,
	"cite":   nil,
	"ul":     nil,
	"ol":     nil,
	"li":     nil,
	"tbody":  nil,
	"tr":     nil,
	"code":   {"class": classTokens},
	"span":   {"class": classTokens},
	"pre":    {"class": classTokens},
	"div":    {"class": classTokens},

	"blockquote": {"class": classTokens},
	"a": {
		"href":   safeURL,
		"target": blankTarget,
	},
	"table": {"data-colspec": anyText},
	"td": {
		"colspan": positiveInt,
		"rowspan": positiveInt,
	},
}

// linkRel is appended to every anchor that opens a new browsing context.
const linkRel = "noopener noreferrer"

// check validates value according to v and returns the value to emit.
func (v validator) check(value string) (string, bool) {
	switch v {
	case anyText:
		return value, true
	case classTokens:
		value = strings.Join(strings.Fields(value), " ")
		if !classPattern.MatchString(value) {
			return "", false
		}
		return value, true
	case safeURL:
		return SafeURL(value)
	case blankTarget:
		if value != "_blank" {
			return "", false
		}
		return value, true
	case positiveInt:
		return clampSpan(value)
	}
	return "", false
}

// leadingDigits returns the run of ASCII digits at the start of s.
// Trailing garbage such as "2px" is ignored, matching how browsers read spans.
func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// IsAllowedTag reports whether name survives sanitization.
func IsAllowedTag(name string) bool {
	_, ok := allowedTags[strings.ToLower(name)]
	return ok
}

// clampSpan parses the leading decimal digits of value as a span, dropping
// zero or non-numeric values and clamping anything above MaxSpan.
func clampSpan(value string) (string, bool) {
	digits := strings.TrimLeft(leadingDigits(strings.TrimSpace(value)), "0")
	if digits == "" {
		return "", false
	}
	if len(digits) > len(strconv.Itoa(MaxSpan)) {
		return strconv.Itoa(MaxSpan), true
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(min(n, MaxSpan)), true
}
