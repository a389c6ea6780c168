package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-tex2html/internal/config"
)

// Environment variable names.
const (
	envPrefix     = "TEX2HTML_"
	envConfigPath = "TEX2HTML_CONFIG"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // TEX2HTML_CONFIG: config file path
	Style      string        // TEX2HTML_STYLE: CSS style name or path
	Timeout    time.Duration // TEX2HTML_TIMEOUT: math engine load timeout

	// Tier 2 - I/O
	InputDir  string // TEX2HTML_INPUT_DIR: default input directory
	OutputDir string // TEX2HTML_OUTPUT_DIR: default output directory

	// Tier 3 - Extended
	Lang      string   // TEX2HTML_LANG: html lang attribute
	ScriptURL string   // TEX2HTML_MATHJAX_URL: MathJax build
	Targets   []string // TEX2HTML_TARGETS: comma-separated selectors
	Workers   int      // TEX2HTML_WORKERS: parallel workers
}

// knownEnvVars lists valid TEX2HTML_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"TEX2HTML_CONFIG":  true,
	"TEX2HTML_STYLE":   true,
	"TEX2HTML_TIMEOUT": true,
	// Tier 2 - I/O
	"TEX2HTML_INPUT_DIR":  true,
	"TEX2HTML_OUTPUT_DIR": true,
	// Tier 3 - Extended
	"TEX2HTML_LANG":        true,
	"TEX2HTML_MATHJAX_URL": true,
	"TEX2HTML_TARGETS":     true,
	"TEX2HTML_WORKERS":     true,
	// Container override for doctor and sandbox hints
	"TEX2HTML_CONTAINER": true,
}

// loadEnvConfig reads configuration through getenv.
// Returns a struct with all recognized TEX2HTML_* values.
func loadEnvConfig(getenv func(string) string) *envConfig {
	if getenv == nil {
		return &envConfig{}
	}

	cfg := &envConfig{
		// Tier 1
		ConfigPath: getenv(envConfigPath),
		Style:      getenv("TEX2HTML_STYLE"),
		// Tier 2
		InputDir:  getenv("TEX2HTML_INPUT_DIR"),
		OutputDir: getenv("TEX2HTML_OUTPUT_DIR"),
		// Tier 3
		Lang:      getenv("TEX2HTML_LANG"),
		ScriptURL: getenv("TEX2HTML_MATHJAX_URL"),
	}

	// Parse duration for timeout
	if timeout := getenv("TEX2HTML_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	// Parse int for workers
	if workers := getenv("TEX2HTML_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	// Split selector list, dropping blanks
	if targets := getenv("TEX2HTML_TARGETS"); targets != "" {
		for _, t := range strings.Split(targets, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Targets = append(cfg.Targets, t)
			}
		}
	}

	return cfg
}

// warnUnknownEnvVars warns about unrecognized TEX2HTML_* variables.
// Helps catch typos like TEX2HTML_STYEL instead of TEX2HTML_STYLE.
func warnUnknownEnvVars(w io.Writer, environ func() []string) {
	if environ == nil {
		return
	}
	for _, env := range environ() {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags, the timeout via
// resolveTimeoutWithEnv)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Style
	if env.Style != "" && cfg.CSS.Style == "" {
		cfg.CSS.Style = env.Style
	}

	// Tier 2 - I/O
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}

	// Tier 3 - Document and typesetting
	if env.Lang != "" && cfg.Output.Lang == "" {
		cfg.Output.Lang = env.Lang
	}
	if env.ScriptURL != "" && cfg.Typeset.ScriptURL == "" {
		cfg.Typeset.ScriptURL = env.ScriptURL
	}
	if len(env.Targets) > 0 && len(cfg.Typeset.Targets) == 0 {
		cfg.Typeset.Targets = env.Targets
	}
}
