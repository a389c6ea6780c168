package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	tex2html "github.com/alnah/go-tex2html"
)

// mapEnv returns a getenv over vars.
func mapEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestCheckMathJax(t *testing.T) {
	t.Parallel()

	local := writeFile(t, t.TempDir(), "tex-chtml.js", "// mathjax")

	tests := []struct {
		name      string
		url       string
		wantURL   string
		wantLocal bool
		wantLevel checkLevel
	}{
		{"default", "", tex2html.DefaultMathJaxURL, false, levelOK},
		{"remote", "https://example.com/mj.js", "https://example.com/mj.js", false, levelOK},
		{"local file", "file://" + filepath.ToSlash(local), "file://" + filepath.ToSlash(local), true, levelOK},
		{"missing local file", "file:///nonexistent/mj.js", "file:///nonexistent/mj.js", true, levelError},
		{"bad scheme", "ftp://example.com/mj.js", "ftp://example.com/mj.js", false, levelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &doctorReport{}
			checkMathJax(r, tt.url)

			if r.MathJax.URL != tt.wantURL || r.MathJax.Local != tt.wantLocal {
				t.Errorf("MathJax = %+v", r.MathJax)
			}
			if len(r.Checks) != 1 || r.Checks[0].Level != tt.wantLevel {
				t.Errorf("checks = %+v, want one %s", r.Checks, tt.wantLevel)
			}
		})
	}
}

func TestCheckBrowser_MissingBinary(t *testing.T) {
	t.Parallel()

	r := &doctorReport{}
	checkBrowser(r, filepath.Join(t.TempDir(), "chrome"), false)

	if r.count(levelError) != 1 || r.Browser.Path != "" {
		t.Errorf("report = %+v", r)
	}
}

func TestCheckStyles(t *testing.T) {
	t.Parallel()

	r := &doctorReport{}
	checkStyles(r)

	if r.count(levelError) != 0 {
		t.Errorf("embedded styles failed: %+v", r.Checks)
	}
	if r.count(levelOK) == 0 {
		t.Error("expected at least one style check")
	}
}

func TestContainerSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"override", map[string]string{"TEX2HTML_CONTAINER": "1"}, "TEX2HTML_CONTAINER=1"},
		{"podman", map[string]string{"container": "podman"}, "container=podman"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, "KUBERNETES_SERVICE_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := containerSignal(mapEnv(tt.vars)); got != tt.want {
				t.Errorf("containerSignal() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		vars      map[string]string
		local     bool
		wantCI    bool
		wantWarns []string
	}{
		{
			name:      "CI with remote MathJax",
			vars:      map[string]string{"CI": "true"},
			wantCI:    true,
			wantWarns: []string{"ROD_NO_SANDBOX=1", "TEX2HTML_MATHJAX_URL"},
		},
		{
			name:      "CI prepared for offline runs",
			vars:      map[string]string{"GITLAB_CI": "true", "ROD_NO_SANDBOX": "1"},
			local:     true,
			wantCI:    true,
			wantWarns: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &doctorReport{MathJax: mathJaxInfo{Local: tt.local}}
			checkEnvironment(r, mapEnv(tt.vars))

			if r.Env.CI != tt.wantCI {
				t.Errorf("CI = %v, want %v", r.Env.CI, tt.wantCI)
			}
			var warns []string
			for _, c := range r.Checks {
				if c.Level == levelWarn {
					warns = append(warns, c.Message)
				}
			}
			if len(warns) != len(tt.wantWarns) {
				t.Fatalf("warnings = %v, want %d", warns, len(tt.wantWarns))
			}
			for i, want := range tt.wantWarns {
				if !strings.Contains(warns[i], want) {
					t.Errorf("warning %q should mention %q", warns[i], want)
				}
			}
		})
	}
}

func TestDoctorReport_Finish(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		levels []checkLevel
		want   string
	}{
		{"nothing", nil, statusReady},
		{"all ok", []checkLevel{levelOK, levelOK}, statusReady},
		{"warning", []checkLevel{levelOK, levelWarn}, statusWarnings},
		{"error wins", []checkLevel{levelWarn, levelError}, statusErrors},
	}

	for _, tt := range tests {
		r := &doctorReport{}
		for _, l := range tt.levels {
			r.add(sectionEnv, l, "x")
		}
		r.finish()
		if r.Status != tt.want {
			t.Errorf("%s: Status = %q, want %q", tt.name, r.Status, tt.want)
		}
	}
}

func TestPrintDoctorReport(t *testing.T) {
	t.Parallel()

	r := &doctorReport{}
	r.add(sectionBrowser, levelError, "Chrome/Chromium not found")
	r.add(sectionMathJax, levelOK, "local script /mj.js")
	r.finish()

	var buf bytes.Buffer
	printDoctorReport(&buf, r)

	out := buf.String()
	for _, want := range []string{"tex2html doctor", "Browser\n  [ERROR] Chrome/Chromium not found", "[OK]    local script /mj.js", "Status: not ready, 1 error(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, sectionStyles) {
		t.Errorf("empty sections should be omitted:\n%s", out)
	}
}

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Parallel()

	env, stdout, _ := newTestEnv("", map[string]string{"ROD_BROWSER_BIN": "/nonexistent/chrome"})
	code := runDoctorCmd([]string{"--json"}, env)

	if code != ExitGeneral {
		t.Errorf("exit = %d, want %d", code, ExitGeneral)
	}

	var report doctorReport
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}
	if report.Status != statusErrors || report.Browser.Path != "" {
		t.Errorf("report = %+v", report)
	}
}
