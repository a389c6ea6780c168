package pipeline

import (
	"strings"
	"testing"
)

func TestRenderListing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "first blank line dropped",
			body:     "\n  indented\nline\n",
			expected: "<pre><code>  indented\nline</code></pre>",
		},
		{
			name:     "text on the begin line kept",
			body:     "x = 1\n",
			expected: "<pre><code>x = 1</code></pre>",
		},
		{
			name:     "markup escaped",
			body:     "\n<b>&</b>\n",
			expected: "<pre><code>&lt;b&gt;&amp;&lt;/b&gt;</code></pre>",
		},
		{
			name:     "options dropped without highlighter",
			body:     "[language=Python, numbers=left]\nprint(1)\n",
			expected: "<pre><code>print(1)</code></pre>",
		},
		{
			name:     "bracket after whitespace is content",
			body:     "\n[1, 2]\n",
			expected: "<pre><code>[1, 2]</code></pre>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := renderListing(tt.body, nil)
			if got != tt.expected {
				t.Errorf("renderListing(%q) = %q, want %q", tt.body, got, tt.expected)
			}
		})
	}
}

func TestListingLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		options  string
		expected string
	}{
		{"language only", "language=Go", "Go"},
		{"with other keys", "numbers=left, language = Python ,frame=single", "Python"},
		{"braced value", "language={C++}", "C++"},
		{"absent", "numbers=left", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := listingLanguage(tt.options); got != tt.expected {
				t.Errorf("listingLanguage(%q) = %q, want %q", tt.options, got, tt.expected)
			}
		})
	}
}

func TestHighlighter_Highlight(t *testing.T) {
	t.Parallel()

	h := newHighlighter()

	out, ok := h.highlight("python", "print('<x>')")
	if !ok {
		t.Fatal("expected python to be highlighted")
	}
	if !strings.Contains(out, "&lt;x&gt;") {
		t.Errorf("expected escaped source in %q", out)
	}

	if _, ok := h.highlight("no-such-language", "x"); ok {
		t.Error("expected unknown language to be rejected")
	}
}

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	t.Run("default style", func(t *testing.T) {
		t.Parallel()

		css, err := HighlightCSS("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(css, ".chroma") {
			t.Errorf("expected .chroma rules, got %q", css)
		}
	})

	t.Run("named style", func(t *testing.T) {
		t.Parallel()

		css, err := HighlightCSS("monokai")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if css == "" {
			t.Error("expected non-empty stylesheet")
		}
	})
}
