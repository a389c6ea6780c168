package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-tex2html/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory under the user config dir searched for configs.
const AppDir = "go-tex2html"

// Field length limits.
const (
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxURLLength       = 2048 // Browser limit
	MaxTitleLength     = 200  // Document title
	MaxLangLength      = 35   // BCP 47 tags in practice
	MaxStyleLength     = 64   // Style names
	MaxSelectorLength  = 256  // One typeset target
	MaxTargets         = 32   // Typeset targets per config
	MaxDurationLength  = 20   // "1m30s"
	MaxTypesetTimeout  = 5 * time.Minute
	defaultLoadTimeout = 10 * time.Second
)

// Config holds all configuration for document conversion.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	CSS       CSSConfig       `yaml:"css"`
	Assets    AssetsConfig    `yaml:"assets"`
	Highlight HighlightConfig `yaml:"highlight"`
	Typeset   TypesetConfig   `yaml:"typeset"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
	Standalone bool   `yaml:"standalone"` // Wrap fragments in a full HTML document
	Title      string `yaml:"title"`      // Document title (empty = file name)
	Lang       string `yaml:"lang"`       // html lang attribute (default: "en")
}

// CSSConfig defines styling of standalone documents.
type CSSConfig struct {
	Style string `yaml:"style"` // Embedded style name or path (empty = "default")
	File  string `yaml:"file"`  // Extra stylesheet appended after the style
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// HighlightConfig defines listing syntax highlighting.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"` // chroma style name (default: "github")
}

// TypesetConfig defines server-side math typesetting.
type TypesetConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Targets    []string `yaml:"targets"`    // CSS selectors (empty = whole document)
	ScriptURL  string   `yaml:"scriptURL"`  // MathJax build (empty = CDN default)
	Timeout    string   `yaml:"timeout"`    // Engine load timeout, e.g. "10s"
	BrowserBin string   `yaml:"browserBin"` // Chrome binary (empty = ROD_BROWSER_BIN or auto)
}

// LoadTimeout returns the parsed engine load timeout, or the default when unset.
// Call Validate first; an unparsable value returns the default.
func (t TypesetConfig) LoadTimeout() time.Duration {
	if t.Timeout == "" {
		return defaultLoadTimeout
	}
	d, err := time.ParseDuration(t.Timeout)
	if err != nil || d <= 0 {
		return defaultLoadTimeout
	}
	return d
}

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"output.title", c.Output.Title, MaxTitleLength},
		{"output.lang", c.Output.Lang, MaxLangLength},
		{"css.style", c.CSS.Style, MaxPathLength},
		{"css.file", c.CSS.File, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"highlight.style", c.Highlight.Style, MaxStyleLength},
		{"typeset.scriptURL", c.Typeset.ScriptURL, MaxURLLength},
		{"typeset.timeout", c.Typeset.Timeout, MaxDurationLength},
		{"typeset.browserBin", c.Typeset.BrowserBin, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Output.Lang != "" && !isLangTag(c.Output.Lang) {
		return fmt.Errorf("%w: output.lang %q (letters, digits and '-' only)", ErrInvalidValue, c.Output.Lang)
	}

	if c.Highlight.Style != "" && !isStyleName(c.Highlight.Style) {
		return fmt.Errorf("%w: highlight.style %q", ErrInvalidValue, c.Highlight.Style)
	}

	return c.validateTypeset()
}

func (c *Config) validateTypeset() error {
	t := c.Typeset

	if len(t.Targets) > MaxTargets {
		return fmt.Errorf("%w: typeset.targets has %d entries (max %d)", ErrInvalidValue, len(t.Targets), MaxTargets)
	}
	for i, target := range t.Targets {
		if err := validateFieldLength(fmt.Sprintf("typeset.targets[%d]", i), target, MaxSelectorLength); err != nil {
			return err
		}
	}

	if t.ScriptURL != "" && !fileutil.IsURL(t.ScriptURL) && !strings.HasPrefix(t.ScriptURL, "file://") {
		return fmt.Errorf("%w: typeset.scriptURL must be an http(s) or file URL, got %q", ErrInvalidValue, t.ScriptURL)
	}

	if t.Timeout != "" {
		d, err := time.ParseDuration(t.Timeout)
		if err != nil {
			return fmt.Errorf("%w: typeset.timeout: %v", ErrInvalidValue, err)
		}
		if d <= 0 || d > MaxTypesetTimeout {
			return fmt.Errorf("%w: typeset.timeout must be in (0, %s], got %s", ErrInvalidValue, MaxTypesetTimeout, d)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func isLangTag(s string) bool {
	for _, r := range s {
		if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

func isStyleName(s string) bool {
	for _, r := range s {
		if !(r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// DefaultConfig returns a neutral configuration: fragments only, no
// highlighting, no typesetting.
func DefaultConfig() *Config {
	return &Config{
		Input:     InputConfig{DefaultDir: ""},
		Output:    OutputConfig{DefaultDir: ""},
		CSS:       CSSConfig{Style: ""},
		Assets:    AssetsConfig{BasePath: ""},
		Highlight: HighlightConfig{Enabled: false},
		Typeset:   TypesetConfig{Enabled: false},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files resolveConfigPath tries for name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
