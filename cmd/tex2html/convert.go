package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/assets"
	"github.com/alnah/go-tex2html/internal/config"
	"github.com/alnah/go-tex2html/internal/document"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/hints"
	"github.com/alnah/go-tex2html/internal/pipeline"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrReadTeX        = errors.New("failed to read TeX file")
	ErrReadCSS        = errors.New("failed to read CSS file")
	ErrWriteHTML      = errors.New("failed to write HTML file")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// stdinName marks standard input in results and as a positional argument.
const stdinName = "-"

// conversionParams groups values shared by every file of a batch.
type conversionParams struct {
	renderer *tex2html.Renderer
	builder  *document.Builder // nil writes bare fragments
	css      string            // Page style, standalone only
	extraCSS string            // Highlight styles, fragments included
	title    string
	lang     string

	// scriptURL is linked from standalone pages when math is left for
	// the browser to typeset.
	scriptURL string

	typeset bool
	targets []string
	log     logrus.FieldLogger
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment, log logrus.FieldLogger) error {
	warnUnknownEnvVars(env.Stderr, env.Environ)
	envCfg := loadEnvConfig(env.Getenv)

	if flags.workers == 0 {
		flags.workers = envCfg.Workers
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	timeout, err := resolveTimeoutWithEnv(flags.typeset.timeout, envCfg.Timeout, cfg.Typeset.Timeout)
	if err != nil {
		return err
	}
	if timeout > 0 {
		cfg.Typeset.Timeout = timeout.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := buildParams(flags, cfg, log)
	if err != nil {
		return err
	}
	defer params.renderer.Close()

	var pool Pool
	if params.typeset {
		sessions := tex2html.NewSessionPool(tex2html.ResolvePoolSize(flags.workers), sessionOptions(cfg, log)...)
		defer func() {
			if err := sessions.Close(); err != nil {
				log.WithError(err).Warn("closing browser sessions")
			}
		}()
		pool = &poolAdapter{pool: sessions}
		log.Debugf("session pool size: %d", sessions.Size())
	}

	if readsStdin(positionalArgs, cfg, env) {
		return convertStdin(ctx, pool, flags.output, params, env)
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no .tex files found in %s", ErrNoInput, inputPath)
	}

	workers := tex2html.ResolvePoolSize(flags.workers)
	results := convertBatch(ctx, pool, workers, files, params)

	failedCount := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d conversion(s) failed", failedCount)
	}
	return nil
}

// loadConfig loads the config named by the flag, or by TEX2HTML_CONFIG
// when the flag is empty. Without either, the defaults apply.
func loadConfig(name string, envCfg *envConfig) (*config.Config, error) {
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Document flags
	if flags.document.standalone {
		cfg.Output.Standalone = true
	}
	if flags.document.title != "" {
		cfg.Output.Title = flags.document.title
	}
	if flags.document.lang != "" {
		cfg.Output.Lang = flags.document.lang
	}

	// Style flags
	if flags.style.style != "" {
		cfg.CSS.Style = flags.style.style
	}
	if flags.style.css != "" {
		cfg.CSS.File = flags.style.css
	}
	if flags.style.assetPath != "" {
		cfg.Assets.BasePath = flags.style.assetPath
	}

	// Highlight flags
	if flags.highlight.enabled {
		cfg.Highlight.Enabled = true
	}
	if flags.highlight.style != "" {
		cfg.Highlight.Style = flags.highlight.style
	}

	// Typeset flags
	if flags.typeset.enabled {
		cfg.Typeset.Enabled = true
	}
	if len(flags.typeset.targets) > 0 {
		cfg.Typeset.Targets = flags.typeset.targets
	}
	if flags.typeset.scriptURL != "" {
		cfg.Typeset.ScriptURL = flags.typeset.scriptURL
	}
	if flags.typeset.browserBin != "" {
		cfg.Typeset.BrowserBin = flags.typeset.browserBin
	}

	// Disable flags
	if flags.highlight.disabled {
		cfg.Highlight.Enabled = false
	}
}

// resolveTimeoutWithEnv picks the engine load timeout.
// Priority: flag > env > config. Zero means the library default.
func resolveTimeoutWithEnv(flagValue string, envValue time.Duration, configValue string) (time.Duration, error) {
	if flagValue != "" {
		return parseTimeout(flagValue)
	}
	if envValue > 0 {
		return envValue, nil
	}
	if configValue != "" {
		return parseTimeout(configValue)
	}
	return 0, nil
}

// parseTimeout parses a positive duration.
func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidTimeout, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, d)
	}
	return d, nil
}

// buildParams resolves styles, templates and the renderer once per batch.
func buildParams(flags *convertFlags, cfg *config.Config, log logrus.FieldLogger) (*conversionParams, error) {
	params := &conversionParams{
		title:   cfg.Output.Title,
		lang:    cfg.Output.Lang,
		typeset: cfg.Typeset.Enabled,
		targets: cfg.Typeset.Targets,
		log:     log,
	}

	rendererOpts := []tex2html.Option{tex2html.WithLogger(log)}
	if cfg.Highlight.Enabled {
		rendererOpts = append(rendererOpts, tex2html.WithHighlighting())
		css, err := pipeline.HighlightCSS(cfg.Highlight.Style)
		if err != nil {
			return nil, fmt.Errorf("building highlight styles: %w", err)
		}
		params.extraCSS = css
	}
	params.renderer = tex2html.NewRenderer(rendererOpts...)

	if !cfg.Output.Standalone {
		return params, nil
	}

	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}
	params.builder, err = document.NewBuilder(resolver, assets.DefaultTemplateName)
	if err != nil {
		return nil, err
	}

	params.css, err = resolveCSSContent(cfg, flags.style.noStyle, resolver)
	if err != nil {
		return nil, err
	}

	if !cfg.Typeset.Enabled && !flags.document.noMathScript {
		params.scriptURL = cfg.Typeset.ScriptURL
		if params.scriptURL == "" {
			params.scriptURL = tex2html.DefaultMathJaxURL
		}
	}
	return params, nil
}

// resolveCSSContent resolves the page stylesheet from config.
// css.style is a style name (via loader) or a file path; css.file is
// appended after it.
func resolveCSSContent(cfg *config.Config, noStyle bool, loader assets.AssetLoader) (string, error) {
	if noStyle {
		return "", nil
	}

	var css string
	switch style := cfg.CSS.Style; {
	case style == "":
		content, err := loader.LoadStyle(assets.DefaultStyleName)
		if err != nil {
			return "", err
		}
		css = content
	case fileutil.IsFilePath(style) || filepath.Ext(style) == ".css":
		content, err := readCSSFile(style)
		if err != nil {
			return "", err
		}
		css = content
	default:
		content, err := loader.LoadStyle(style)
		if err != nil {
			return "", err
		}
		css = content
	}

	if cfg.CSS.File != "" {
		extra, err := readCSSFile(cfg.CSS.File)
		if err != nil {
			return "", err
		}
		css = joinCSS(css, extra)
	}
	return css, nil
}

// readCSSFile reads a user stylesheet.
func readCSSFile(path string) (string, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(content), nil
}

// sessionOptions maps config onto Session options.
func sessionOptions(cfg *config.Config, log logrus.FieldLogger) []tex2html.Option {
	opts := []tex2html.Option{
		tex2html.WithLogger(log),
		tex2html.WithLoadTimeout(cfg.Typeset.LoadTimeout()),
	}
	if cfg.Typeset.ScriptURL != "" {
		opts = append(opts, tex2html.WithScriptURL(cfg.Typeset.ScriptURL))
	}
	if cfg.Typeset.BrowserBin != "" {
		opts = append(opts, tex2html.WithBrowserBin(cfg.Typeset.BrowserBin))
	}
	return opts
}

// readsStdin reports whether input comes from standard input: an explicit
// "-", or no input anywhere while stdin is piped.
func readsStdin(args []string, cfg *config.Config, env *Environment) bool {
	if len(args) > 0 {
		return args[0] == stdinName
	}
	if cfg.Input.DefaultDir != "" || env.Stdin == nil {
		return false
	}
	return env.IsTerminal == nil || !env.IsTerminal(env.Stdin)
}

// convertStdin converts standard input and writes to output, or to stdout
// when output is empty.
func convertStdin(ctx context.Context, pool Pool, output string, params *conversionParams, env *Environment) error {
	content, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %v", ErrReadTeX, err)
	}

	var ts Typesetter
	if pool != nil {
		ts, err = pool.Acquire()
		if err != nil {
			return err
		}
		defer pool.Release(ts)
	}

	out, err := renderDocument(ctx, ts, stdinName, string(content), params)
	if err != nil {
		return err
	}

	if output == "" {
		if _, err := io.WriteString(env.Stdout, out); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteHTML, err)
		}
		return nil
	}
	return writeOutput(output, out)
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// joinCSS concatenates non-empty stylesheets.
func joinCSS(sheets ...string) string {
	var parts []string
	for _, s := range sheets {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// hintFor returns an actionable hint for err, or "".
// configName is the config the run asked for, if any.
func hintFor(err error, configName string, getenv func(string) string) string {
	switch {
	case errors.Is(err, tex2html.ErrBrowserConnect), errors.Is(err, tex2html.ErrPageCreate):
		if getenv == nil {
			getenv = func(string) string { return "" }
		}
		return hints.ForBrowserConnect(getenv)
	case errors.Is(err, tex2html.ErrEngineTimeout):
		return hints.ForTimeout()
	case errors.Is(err, tex2html.ErrEngineLoad):
		return hints.ForEngineLoad()
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if configName != "" && !fileutil.IsFilePath(configName) {
			searched = config.SearchPaths(configName)
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.Styles())
	case errors.Is(err, ErrInvalidExtension):
		return hints.ForInputNotTeX()
	case errors.Is(err, ErrWriteHTML):
		return hints.ForOutputDirectory()
	}
	return ""
}
