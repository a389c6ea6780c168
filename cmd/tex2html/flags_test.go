package main

import (
	"io"
	"reflect"
	"testing"

	flag "github.com/spf13/pflag"
)

// flagInfo is the pflag flag type, named for VisitAll callbacks.
type flagInfo = flag.Flag

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	args := []string{
		"-o", "out", "-w", "2", "-q",
		"--standalone", "--title", "T", "--lang", "en",
		"--style", "minimal", "--css", "x.css", "--no-style",
		"--highlight", "--highlight-style", "monokai",
		"--typeset", "--target", "#a", "--target", ".b",
		"--mathjax-url", "file:///mj.js", "-t", "20s", "--browser", "/bin/chrome",
		"notes.tex",
	}

	f, positional, err := parseConvertFlags(args, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if f.output != "out" || f.workers != 2 || !f.common.quiet {
		t.Errorf("io flags = %+v", f)
	}
	if !f.document.standalone || f.document.title != "T" || f.document.lang != "en" {
		t.Errorf("document = %+v", f.document)
	}
	if f.style.style != "minimal" || f.style.css != "x.css" || !f.style.noStyle {
		t.Errorf("style = %+v", f.style)
	}
	if !f.highlight.enabled || f.highlight.style != "monokai" {
		t.Errorf("highlight = %+v", f.highlight)
	}
	want := typesetFlags{enabled: true, targets: []string{"#a", ".b"}, scriptURL: "file:///mj.js", timeout: "20s", browserBin: "/bin/chrome"}
	if !reflect.DeepEqual(f.typeset, want) {
		t.Errorf("typeset = %+v, want %+v", f.typeset, want)
	}
	if !reflect.DeepEqual(positional, []string{"notes.tex"}) {
		t.Errorf("positional = %v", positional)
	}
}

func TestParseConvertFlags_TargetKeepsCommas(t *testing.T) {
	t.Parallel()

	f, _, err := parseConvertFlags([]string{"--target", "h1, h2"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f.typeset.targets, []string{"h1, h2"}) {
		t.Errorf("targets = %q, want one selector list", f.typeset.targets)
	}
}

func TestParseConvertFlags_Unknown(t *testing.T) {
	t.Parallel()

	if _, _, err := parseConvertFlags([]string{"--nope"}, io.Discard); err == nil {
		t.Error("expected error for unknown flag")
	}
}
