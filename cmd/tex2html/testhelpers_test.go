package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	tex2html "github.com/alnah/go-tex2html"
)

// newTestEnv returns an environment reading stdin from the given text and
// variables from vars. An empty stdin behaves as a terminal.
func newTestEnv(stdin string, vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdin:      strings.NewReader(stdin),
		Stdout:     &stdout,
		Stderr:     &stderr,
		IsTerminal: func(io.Reader) bool { return stdin == "" },
		Getenv:     func(key string) string { return vars[key] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, &stdout, &stderr
}

// writeFile creates path under dir with content and returns the full path.
func writeFile(t *testing.T, dir, path, content string) string {
	t.Helper()
	full := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return full
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// newTestParams returns fragment-mode params with a silent logger.
func newTestParams(t *testing.T) *conversionParams {
	t.Helper()
	logger, _ := test.NewNullLogger()
	r := tex2html.NewRenderer(tex2html.WithLogger(logger))
	t.Cleanup(r.Close)
	return &conversionParams{renderer: r, log: logger}
}

// fakeTypesetter wraps fragments in a marker instead of running a browser.
type fakeTypesetter struct {
	mu      sync.Mutex
	targets [][]string
	err     error
}

func (f *fakeTypesetter) Typeset(_ context.Context, fragment string, targets []string) (*tex2html.TypesetResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.targets = append(f.targets, targets)
	if f.err != nil {
		return nil, f.err
	}
	return &tex2html.TypesetResult{
		HTML: "<mjx-container>" + fragment + "</mjx-container>",
		CSS:  "mjx-container{display:inline}",
	}, nil
}

// fakePool hands out one shared fakeTypesetter.
type fakePool struct {
	ts         *fakeTypesetter
	size       int
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
}

func (p *fakePool) Acquire() (Typesetter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.ts, nil
}

func (p *fakePool) Release(Typesetter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *fakePool) Size() int { return p.size }
