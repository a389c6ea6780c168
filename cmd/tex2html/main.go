package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand is returned for an unrecognized subcommand.
var ErrUnknownCommand = errors.New("unknown command")

// commands lists the subcommands runMain dispatches.
var commands = map[string]bool{
	"convert": true,
	"config":  true,
	"doctor":  true,
	"version": true,
	"help":    true,
}

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches args (os.Args shaped) and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]

	// "tex2html notes.tex" is shorthand for "tex2html convert notes.tex".
	if !isCommand(cmd) && (looksLikeTeX(cmd) || cmd == "-") {
		cmd, rest = "convert", args[1:]
	}

	switch cmd {
	case "convert":
		return runConvertCmd(rest, env)
	case "config":
		return runConfigCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "tex2html %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "%v: %s\n", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// runConvertCmd parses convert flags, sets up logging and the session
// pool, and runs the conversion.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, env, log); err != nil {
		configName := flags.common.config
		if configName == "" && env.Getenv != nil {
			configName = env.Getenv(envConfigPath)
		}
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, configName, env.Getenv))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// newLogger returns the CLI logger writing to w.
// Verbose shows debug entries, quiet shows only errors.
func newLogger(w io.Writer, quiet, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case quiet:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// isCommand reports whether s names a subcommand.
func isCommand(s string) bool {
	return commands[s]
}

// looksLikeTeX reports whether s has a .tex extension.
func looksLikeTeX(s string) bool {
	return fileutil.IsTeX(s)
}

// Compile-time check that sessions satisfy the batch typesetter.
var _ Typesetter = (*tex2html.Session)(nil)
