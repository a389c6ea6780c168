package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// runConfigCmd prints the effective configuration as YAML: the config
// file (or defaults) with TEX2HTML_* variables applied.
func runConfigCmd(args []string, env *Environment) int {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(flags.config, envCfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, flags.config, env.Getenv))
		return exitCodeFor(err)
	}
	applyEnvConfig(envCfg, cfg)
	if envCfg.Timeout > 0 {
		cfg.Typeset.Timeout = envCfg.Timeout.String()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	out, err := cfg.YAML()
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitGeneral
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}
