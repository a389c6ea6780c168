package tex2html

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/alnah/go-tex2html/internal/sanitize"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "two paragraphs",
			input:    "First paragraph.\n\nSecond paragraph.",
			expected: "<p>First paragraph.</p><p>Second paragraph.</p>",
		},
		{
			name:     "style commands",
			input:    "\\textbf{Bold} \\textit{Italic} \\underline{U}",
			expected: "<p><strong>Bold</strong> <em>Italic</em> <u>U</u></p>",
		},
		{
			name:     "javascript href dropped, caption kept",
			input:    "\\href{javascript:alert(1)}{Click}",
			expected: `<p><a target="_blank" rel="noopener noreferrer">Click</a></p>`,
		},
		{
			name:     "protocol relative href dropped",
			input:    "\\href{//evil.com}{bad}",
			expected: `<p><a target="_blank" rel="noopener noreferrer">bad</a></p>`,
		},
		{
			name:     "tab smuggled between slashes dropped",
			input:    "\\href{/\t/evil.com}{bad}",
			expected: `<p><a target="_blank" rel="noopener noreferrer">bad</a></p>`,
		},
		{
			name:     "safe href kept",
			input:    "\\href{https://example.com}{ok}",
			expected: `<p><a href="https://example.com" target="_blank" rel="noopener noreferrer">ok</a></p>`,
		},
		{
			name:     "math verbatim without typesetting",
			input:    "Inline $a+b$ and display $$x^2$$",
			expected: "<p>Inline $a+b$ and display $$x^2$$</p>",
		},
		{
			name:     "math escaped but otherwise verbatim",
			input:    "$a<b$",
			expected: "<p>$a&lt;b$</p>",
		},
		{
			name:     "raw html escaped",
			input:    "<script>alert(1)</script>",
			expected: "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>",
		},
		{
			name:     "list without items renders nothing",
			input:    "\\begin{itemize}hello\\end{itemize}",
			expected: "",
		},
		{
			name:     "text before the first item dropped",
			input:    "\\begin{itemize}lead \\item a\\end{itemize}",
			expected: "<ul><li>a</li></ul>",
		},
		{
			name:     "nested list inside an item",
			input:    "\\begin{itemize}\\item x\\begin{itemize}\\item a\\end{itemize}\\end{itemize}",
			expected: "<ul><li>x<ul><li>a</li></ul></li></ul>",
		},
		{
			name:     "nested itemize closes at the outer end",
			input:    "\\begin{itemize}\\begin{itemize}\\item a\\end{itemize}\\end{itemize}\nafter",
			expected: "<p>after</p>",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Render(tt.input, RenderOptions{})
			if got != tt.expected {
				t.Errorf("Render(%q)\n got: %q\nwant: %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRender_TableSpans(t *testing.T) {
	t.Parallel()

	input := "\\begin{tabular}{ccc}\n" +
		"\\multicolumn{2}{c}{\\multirow{2}{*}{X}} & y \\\\\n" +
		"z \\\\\n" +
		"\\end{tabular}"

	got := Render(input, RenderOptions{})

	if !strings.Contains(got, `colspan="2" rowspan="2"`) {
		t.Errorf("missing combined spans in %q", got)
	}
	if !strings.Contains(got, "<td>z</td></tr>") {
		t.Errorf("second row should hold only the unreserved column: %q", got)
	}
}

func TestRender_OversizedSpansClamped(t *testing.T) {
	t.Parallel()

	got := Render("\\begin{tabular}{c}\\multicolumn{5000}{c}{X}\\end{tabular}", RenderOptions{})

	want := `<table data-colspec="c"><tbody><tr><td colspan="1000">X</td></tr></tbody></table>`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_NeverEmitsDangerousMarkup(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<script>alert(1)</script>",
		"\\href{javascript:alert(1)}{x}",
		"\\href{JaVaScRiPt:alert(1)}{x}",
		"\\href{ javascript:alert(1)}{x}",
		"\\url{javascript:alert(1)}",
		"\\textbf{<img src=x onerror=alert(1)>}",
		"\\begin{lstlisting}\n</code><script>x</script>\n\\end{lstlisting}",
		"\\begin{tabular}{c}<iframe>\\\\\\end{tabular}",
		"\\epigraph{<svg onload=x>}{\\href{data:text/html,x}{y}}",
		"$<script>$ $$</p><script>$$",
		"\\begin{itemize}\\item[<b onclick=x>] y\\end{itemize}",
		"\\begin{itemize}",
		"\\textbf{",
		"}}}{{{\\\\\\",
	}

	for _, input := range inputs {
		got := Render(input, RenderOptions{})
		lower := strings.ToLower(got)
		for _, bad := range []string{"<script", "javascript:", "<iframe", "<img", "<svg", "onerror", "onload", "onclick"} {
			if strings.Contains(lower, bad) {
				t.Errorf("Render(%q) contains %q: %q", input, bad, got)
			}
		}
		if again := sanitize.Sanitize(got); again != got {
			t.Errorf("sanitizing Render(%q) again changed it:\n got: %q\nwant: %q", input, again, got)
		}
	}
}

func TestRenderer_Typeset(t *testing.T) {
	t.Parallel()

	engine := &recordingEngine{}
	r := NewRenderer(
		WithTypesetter(&countingLoader{engine: engine}),
		WithTick(time.Millisecond),
	)
	defer r.Close()

	input := "Inline $a+b$"
	plain := r.Render(input, RenderOptions{})
	typeset := r.Render(input, RenderOptions{Typeset: true, TypesetTarget: []string{"#preview"}})
	if plain != typeset {
		t.Errorf("typesetting changed the result: %q vs %q", typeset, plain)
	}

	r.Scheduler().Wait()

	_, scopes := engine.snapshot()
	if want := [][]string{{"#preview"}}; !reflect.DeepEqual(scopes, want) {
		t.Errorf("scopes = %v, want %v", scopes, want)
	}
}

func TestRenderer_TypesetWithoutTypesetter(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r := NewRenderer(WithLogger(logger))
	defer r.Close()

	got := r.Render("$x$", RenderOptions{Typeset: true})
	if got != "<p>$x$</p>" {
		t.Errorf("Render() = %q", got)
	}
	if r.Scheduler() != nil {
		t.Error("Scheduler() should be nil without a typesetter")
	}
	if !hasLogMessage(hook, "typeset requested without a typesetter") {
		t.Error("expected a debug log for the dropped request")
	}
}

func TestRenderer_WithHighlighting(t *testing.T) {
	t.Parallel()

	r := NewRenderer(WithHighlighting())
	got := r.Render("\\begin{lstlisting}[language=Go]\nfunc main() {}\n\\end{lstlisting}", RenderOptions{})

	if !strings.Contains(got, `class="chroma"`) {
		t.Errorf("expected highlighted listing, got %q", got)
	}
	if strings.Contains(got, "style=") {
		t.Errorf("inline styles must not survive sanitizing: %q", got)
	}
}

// panicConverter fails every conversion.
type panicConverter struct{}

func (panicConverter) ToHTML(string) string { panic("broken pipeline") }

func TestRenderer_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	r := &Renderer{converter: panicConverter{}, log: logger}

	got := r.Render("  a <b> & c  ", RenderOptions{})
	if want := "<p>a &lt;b&gt; &amp; c</p>"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.ErrorLevel {
		t.Errorf("expected an error log, got %v", entry)
	}
}

func TestOptions_Panics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"nil typesetter", func() { WithTypesetter(nil) }},
		{"nil logger", func() { WithLogger(nil) }},
		{"zero load timeout", func() { WithLoadTimeout(0) }},
		{"zero typeset timeout", func() { WithTypesetTimeout(0) }},
		{"negative tick", func() { WithTick(-time.Second) }},
		{"empty script url", func() { WithScriptURL("") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected panic", tt.name)
				}
			}()
			tt.fn()
		})
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := newConfig(nil)
	if cfg.tick != DefaultTick {
		t.Errorf("tick = %v, want %v", cfg.tick, DefaultTick)
	}
	if cfg.loadTimeout != DefaultLoadTimeout {
		t.Errorf("loadTimeout = %v, want %v", cfg.loadTimeout, DefaultLoadTimeout)
	}
	if cfg.typesetTimeout != DefaultTypesetTimeout {
		t.Errorf("typesetTimeout = %v, want %v", cfg.typesetTimeout, DefaultTypesetTimeout)
	}
	if cfg.scriptURL != DefaultMathJaxURL {
		t.Errorf("scriptURL = %q, want %q", cfg.scriptURL, DefaultMathJaxURL)
	}
	if cfg.loader != nil || cfg.highlight {
		t.Error("typesetting and highlighting should be off by default")
	}

	cfg = newConfig([]Option{WithTick(0), WithScriptURL("/mathjax.js"), WithBrowserBin("/usr/bin/chromium")})
	if cfg.tick != 0 || cfg.scriptURL != "/mathjax.js" || cfg.browserBin != "/usr/bin/chromium" {
		t.Errorf("options not applied: %+v", cfg)
	}
}
