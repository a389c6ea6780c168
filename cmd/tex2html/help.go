package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert TeX files to HTML")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check the typesetting environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tex2html help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html convert [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert TeX markup to sanitized HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .tex file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w, "           '-' or piped stdin reads from standard input")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -s, --standalone          Wrap output in a full HTML document")
	fmt.Fprintln(w, "      --title <s>           Document title (\"\" = file name)")
	fmt.Fprintln(w, "      --lang <s>            Document language, e.g. en, fr-CA")
	fmt.Fprintln(w, "      --no-math-script      Do not load MathJax in standalone pages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name|path>   CSS style name or file path")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file appended to the style")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w, "      --no-style            Disable CSS styling")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Listings:")
	fmt.Fprintln(w, "      --highlight           Highlight listings with [language=X]")
	fmt.Fprintln(w, "      --highlight-style <s> Chroma style (default: github)")
	fmt.Fprintln(w, "      --no-highlight        Disable highlighting")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Typesetting:")
	fmt.Fprintln(w, "      --typeset             Typeset math with MathJax in headless Chrome")
	fmt.Fprintln(w, "      --target <selector>   Element to typeset (repeatable)")
	fmt.Fprintln(w, "      --mathjax-url <url>   MathJax script URL")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Engine load timeout (e.g., 10s, 1m)")
	fmt.Fprintln(w, "      --browser <path>      Chrome or Chromium binary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing and debug logs")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html config [-c name|path]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration convert would use, as YAML.")
	fmt.Fprintln(w, "Environment variables (TEX2HTML_*) are applied over the file.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: tex2html doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, sandbox and MathJax settings used by --typeset.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tex2html version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tex2html help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
