package sanitize

import "strings"

// safeSchemes are the accepted URL prefixes, compared case-insensitively.
var safeSchemes = []string{"http://", "https://", "mailto:", "#"}

// SafeURL reports whether s may be used as a link target.
// Accepted: http, https and mailto URLs, fragments, and site-absolute paths
// starting with exactly one slash. The candidate is returned unchanged.
//
// Protocol-relative URLs ("//host") and the "/\host" form browsers treat the
// same way are rejected because they let the author pick the host. Control
// characters are rejected anywhere: browsers strip tab and newline before
// parsing, so "/\t/host" would otherwise reach the host check as "//host".
func SafeURL(s string) (string, bool) {
	if s == "" || hasControl(s) {
		return "", false
	}

	lower := strings.ToLower(s)
	for _, scheme := range safeSchemes {
		if strings.HasPrefix(lower, scheme) {
			return s, true
		}
	}

	if s[0] == '/' {
		if len(s) > 1 && (s[1] == '/' || s[1] == '\\') {
			return "", false
		}
		return s, true
	}

	return "", false
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}
