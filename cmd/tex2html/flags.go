package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds standalone document flags.
type documentFlags struct {
	standalone   bool
	title        string
	lang         string
	noMathScript bool
}

// styleFlags holds stylesheet flags.
type styleFlags struct {
	style     string // Name or path of the page style
	css       string // Extra stylesheet file
	assetPath string // Override asset directory
	noStyle   bool   // Disable CSS styling
}

// highlightFlags holds listing highlighting flags.
type highlightFlags struct {
	style    string
	disabled bool
	enabled  bool
}

// typesetFlags holds server-side typesetting flags.
type typesetFlags struct {
	enabled    bool
	targets    []string
	scriptURL  string
	timeout    string
	browserBin string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	workers   int
	document  documentFlags
	style     styleFlags
	highlight highlightFlags
	typeset   typesetFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addDocumentFlags adds standalone document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.BoolVarP(&f.standalone, "standalone", "s", false, "wrap output in a full HTML document")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = file name)")
	fs.StringVar(&f.lang, "lang", "", "document language (html lang attribute)")
	fs.BoolVar(&f.noMathScript, "no-math-script", false, "do not load MathJax in standalone pages")
}

// addStyleFlags adds stylesheet flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.css, "css", "", "extra CSS file appended to the style")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable CSS styling")
}

// addHighlightFlags adds listing highlighting flags to a FlagSet.
func addHighlightFlags(fs *flag.FlagSet, f *highlightFlags) {
	fs.BoolVar(&f.enabled, "highlight", false, "highlight listings that declare a language")
	fs.StringVar(&f.style, "highlight-style", "", "chroma style for listings (default: github)")
	fs.BoolVar(&f.disabled, "no-highlight", false, "disable listing highlighting")
}

// addTypesetFlags adds typesetting flags to a FlagSet.
func addTypesetFlags(fs *flag.FlagSet, f *typesetFlags) {
	fs.BoolVar(&f.enabled, "typeset", false, "typeset math with MathJax in headless Chrome")
	fs.StringArrayVar(&f.targets, "target", nil, "CSS selector to typeset (repeatable, default: whole document)")
	fs.StringVar(&f.scriptURL, "mathjax-url", "", "MathJax script URL")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "math engine load timeout (e.g., 10s, 1m)")
	fs.StringVar(&f.browserBin, "browser", "", "Chrome or Chromium binary")
}

// newConvertFlagSet registers every convert flag on a new FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addStyleFlags(fs, &f.style)
	addHighlightFlags(fs, &f.highlight)
	addTypesetFlags(fs, &f.typeset)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseConfigFlags parses flags of the config command.
func parseConfigFlags(args []string, stderr io.Writer) (*commonFlags, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	f := &commonFlags{}
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.SetOutput(stderr)
	fs.Usage = func() { printConfigUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
