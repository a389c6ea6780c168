// Package hints turns common failures into one-line suggestions appended to
// CLI error messages as "\n  hint: <text>".
package hints

import (
	"strings"

	"github.com/alnah/go-tex2html/internal/fileutil"
)

// ciVars are set by the CI systems hints know about.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// ForBrowserConnect suggests sandbox and binary settings for a browser that
// would not start. getenv reads the process environment.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string

	if inSandboxedEnv(getenv) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 in containers and CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "point ROD_BROWSER_BIN or --browser at Chrome")
	}
	hints = append(hints, "run 'tex2html doctor' for details")

	return format(strings.Join(hints, "; "))
}

// inSandboxedEnv reports whether Chrome's sandbox is likely unavailable.
func inSandboxedEnv(getenv func(string) string) bool {
	if getenv("TEX2HTML_CONTAINER") == "1" || fileutil.FileExists("/.dockerenv") {
		return true
	}
	for _, v := range ciVars {
		if getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForTimeout returns a hint about increasing the engine load timeout.
func ForTimeout() string {
	return format("on slow networks, raise --timeout")
}

// ForEngineLoad returns a hint for a math engine that failed to load.
func ForEngineLoad() string {
	return format("check network access to the MathJax CDN, or serve it locally with --mathjax-url file:///path/tex-chtml.js")
}

// ForConfigNotFound suggests --config, and the user config path when
// searchedPaths contains one.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-tex2html") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns a hint for output that could not be written.
func ForOutputDirectory() string {
	return format("check the output directory is writable")
}

// ForStyleNotFound lists the built-in styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", ") + ", or pass a .css file")
}

// ForInputNotTeX returns a hint for inputs without a .tex extension.
func ForInputNotTeX() string {
	return format("pass a .tex file, a directory of .tex files, or pipe text on stdin")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
