package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args     []string
		wantCode int
		want     string
	}{
		{nil, ExitSuccess, "Commands:"},
		{[]string{"convert"}, ExitSuccess, "--mathjax-url"},
		{[]string{"config"}, ExitSuccess, "TEX2HTML_*"},
		{[]string{"doctor"}, ExitSuccess, "--json"},
		{[]string{"version"}, ExitSuccess, "Show version"},
		{[]string{"help"}, ExitSuccess, "help [command]"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := newTestEnv("", nil)
			if code := runHelp(tt.args, env); code != tt.wantCode {
				t.Errorf("runHelp(%v) = %d, want %d", tt.args, code, tt.wantCode)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("output should contain %q, got %q", tt.want, stdout.String())
			}
		})
	}
}

func TestConvertUsage_ListsEveryFlag(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printConvertUsage(&buf)
	usage := buf.String()

	fs := newConvertFlagSet(&convertFlags{})
	fs.VisitAll(func(f *flagInfo) {
		if !strings.Contains(usage, "--"+f.Name) {
			t.Errorf("usage is missing --%s", f.Name)
		}
	})
}
