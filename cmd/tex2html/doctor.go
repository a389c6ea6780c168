package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/assets"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/pipeline"
)

// checkLevel grades one doctor finding.
type checkLevel string

const (
	levelOK    checkLevel = "ok"
	levelWarn  checkLevel = "warn"
	levelError checkLevel = "error"
)

// Report sections, in print order.
const (
	sectionBrowser = "Browser"
	sectionMathJax = "MathJax"
	sectionStyles  = "Styles"
	sectionEnv     = "Environment"
)

// Overall report status.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

type doctorCheck struct {
	Section string     `json:"section"`
	Level   checkLevel `json:"level"`
	Message string     `json:"message"`
}

// browserInfo is what --typeset would launch.
type browserInfo struct {
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// mathJaxInfo is the script --typeset would load.
type mathJaxInfo struct {
	URL   string `json:"url"`
	Local bool   `json:"local"`
}

type envInfo struct {
	Platform  string `json:"platform"`
	Container string `json:"container,omitempty"` // signal that gave it away
	CI        bool   `json:"ci"`
}

// doctorReport collects every finding of one doctor run.
type doctorReport struct {
	Status  string        `json:"status"`
	Browser browserInfo   `json:"browser"`
	MathJax mathJaxInfo   `json:"mathjax"`
	Env     envInfo       `json:"environment"`
	Checks  []doctorCheck `json:"checks"`
}

func (r *doctorReport) add(section string, level checkLevel, format string, args ...any) {
	r.Checks = append(r.Checks, doctorCheck{
		Section: section,
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// count returns how many checks reached level.
func (r *doctorReport) count(level checkLevel) int {
	n := 0
	for _, c := range r.Checks {
		if c.Level == level {
			n++
		}
	}
	return n
}

// finish derives Status from the worst finding.
func (r *doctorReport) finish() {
	switch {
	case r.count(levelError) > 0:
		r.Status = statusErrors
	case r.count(levelWarn) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
}

// runDoctorCmd prints the report, as JSON with --json.
// Exits 1 when any check failed; warnings alone still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	asJSON := false
	for _, arg := range args {
		if arg == "--json" {
			asJSON = true
		}
	}

	getenv := env.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	report := runDoctor(getenv)

	if asJSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(getenv func(string) string) *doctorReport {
	r := &doctorReport{}

	checkBrowser(r, getenv("ROD_BROWSER_BIN"), getenv("ROD_NO_SANDBOX") == "1")
	checkMathJax(r, getenv("TEX2HTML_MATHJAX_URL"))
	checkStyles(r)
	checkEnvironment(r, getenv)

	r.finish()
	return r
}

// checkBrowser locates Chrome the way the session launcher does.
func checkBrowser(r *doctorReport, bin string, noSandbox bool) {
	if bin == "" {
		found, ok := launcher.LookPath()
		if !ok {
			r.add(sectionBrowser, levelError, "Chrome/Chromium not found; install it or set ROD_BROWSER_BIN")
			return
		}
		bin = found
	}
	if !fileutil.FileExists(bin) {
		r.add(sectionBrowser, levelError, "no browser at %s", bin)
		return
	}

	r.Browser.Path = bin
	r.Browser.Sandbox = !noSandbox
	r.add(sectionBrowser, levelOK, "found %s", bin)

	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- rod lookup or user setting
	if err != nil {
		r.add(sectionBrowser, levelWarn, "could not read version: %v", err)
		return
	}
	r.Browser.Version = strings.TrimSpace(string(out))
	r.add(sectionBrowser, levelOK, "%s", r.Browser.Version)
}

// checkMathJax validates the script URL. A file URL must name an
// existing file.
func checkMathJax(r *doctorReport, scriptURL string) {
	if scriptURL == "" {
		scriptURL = tex2html.DefaultMathJaxURL
	}
	r.MathJax.URL = scriptURL

	if fileutil.IsURL(scriptURL) {
		r.add(sectionMathJax, levelOK, "script %s", scriptURL)
		return
	}

	u, err := url.Parse(scriptURL)
	if err != nil || u.Scheme != "file" {
		r.add(sectionMathJax, levelError, "script URL %q is neither http(s) nor file://", scriptURL)
		return
	}

	r.MathJax.Local = true
	path := filepath.FromSlash(u.Path)
	if !fileutil.FileExists(path) {
		r.add(sectionMathJax, levelError, "local script %s does not exist", path)
		return
	}
	r.add(sectionMathJax, levelOK, "local script %s", path)
}

// checkStyles confirms the embedded page styles and the default
// highlight stylesheet are usable.
func checkStyles(r *doctorReport) {
	for _, name := range assets.Styles() {
		if _, err := assets.LoadStyle(name); err != nil {
			r.add(sectionStyles, levelError, "style %s: %v", name, err)
			continue
		}
		r.add(sectionStyles, levelOK, "style %s", name)
	}
	if _, err := pipeline.HighlightCSS(pipeline.DefaultHighlightStyle); err != nil {
		r.add(sectionStyles, levelError, "highlight style %s: %v", pipeline.DefaultHighlightStyle, err)
	}
}

// checkEnvironment flags containers and CI, where Chrome's sandbox and
// the MathJax CDN are often unavailable.
func checkEnvironment(r *doctorReport, getenv func(string) string) {
	r.Env.Platform = runtime.GOOS + "/" + runtime.GOARCH
	r.Env.Container = containerSignal(getenv)
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			r.Env.CI = true
			break
		}
	}

	r.add(sectionEnv, levelOK, "platform %s", r.Env.Platform)
	if r.Env.Container != "" {
		r.add(sectionEnv, levelOK, "container (%s)", r.Env.Container)
	}
	if r.Env.CI {
		r.add(sectionEnv, levelOK, "CI")
	}

	if (r.Env.Container != "" || r.Env.CI) && getenv("ROD_NO_SANDBOX") != "1" {
		r.add(sectionEnv, levelWarn, "sandboxed environment without ROD_NO_SANDBOX=1; Chrome may fail to start")
	}
	if r.Env.CI && !r.MathJax.Local {
		r.add(sectionEnv, levelWarn, "CI with a remote MathJax; set TEX2HTML_MATHJAX_URL=file:///path/tex-chtml.js for offline runs")
	}
}

// containerSignal returns what identified a container, or "".
func containerSignal(getenv func(string) string) string {
	switch {
	case getenv("TEX2HTML_CONTAINER") == "1":
		return "TEX2HTML_CONTAINER=1"
	case getenv("container") != "":
		return "container=" + getenv("container")
	case getenv("KUBERNETES_SERVICE_HOST") != "":
		return "KUBERNETES_SERVICE_HOST"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "/.dockerenv"
	}
	return ""
}

var levelMarks = map[checkLevel]string{
	levelOK:    "[OK]",
	levelWarn:  "[WARN]",
	levelError: "[ERROR]",
}

// printDoctorReport writes the checks grouped by section.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "tex2html doctor")

	for _, section := range []string{sectionBrowser, sectionMathJax, sectionStyles, sectionEnv} {
		printed := false
		for _, c := range r.Checks {
			if c.Section != section {
				continue
			}
			if !printed {
				fmt.Fprintf(w, "\n%s\n", section)
				printed = true
			}
			fmt.Fprintf(w, "  %-7s %s\n", levelMarks[c.Level], c.Message)
		}
	}

	fmt.Fprintln(w)
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: ready to typeset")
	case statusWarnings:
		fmt.Fprintf(w, "Status: ready with %d warning(s)\n", r.count(levelWarn))
	default:
		fmt.Fprintf(w, "Status: not ready, %d error(s)\n", r.count(levelError))
	}
}
