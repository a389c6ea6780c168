package main

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal reports whether r is an interactive terminal.
	IsTerminal func(r io.Reader) bool

	// Getenv reads environment variables.
	Getenv func(key string) string

	// Environ lists environment variables as KEY=value.
	Environ func() []string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: isTerminal,
		Getenv:     os.Getenv,
		Environ:    os.Environ,
	}
}

// isTerminal reports whether r is a file attached to a terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
