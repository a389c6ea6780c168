package tex2html

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// RenderOptions controls one Render call.
type RenderOptions struct {
	// Typeset requests an asynchronous math typesetting pass after the
	// render. It never changes the returned HTML.
	Typeset bool

	// TypesetTarget limits the pass to elements matching these CSS
	// selectors. Blank or invalid selectors are dropped; an empty list
	// means the whole document. Ignored unless Typeset is set.
	TypesetTarget []string
}

// Option configures a Renderer or a Scheduler.
type Option func(*config)

// config holds the settings shared by Renderer and Scheduler.
type config struct {
	highlight   bool
	loader      EngineLoader
	logger      logrus.FieldLogger
	loadTimeout time.Duration
	tick        time.Duration

	typesetTimeout time.Duration

	// Browser sessions only.
	scriptURL  string
	browserBin string
}

// Scheduler defaults.
const (
	// DefaultLoadTimeout bounds the engine load.
	DefaultLoadTimeout = 10 * time.Second

	// DefaultTypesetTimeout bounds one clear-and-typeset pass.
	DefaultTypesetTimeout = 30 * time.Second

	// DefaultTick is one display frame: requests arriving within it share a pass.
	DefaultTick = 16 * time.Millisecond
)

func defaultConfig() config {
	return config{
		logger:      discardLogger(),
		loadTimeout: DefaultLoadTimeout,
		tick:        DefaultTick,
		scriptURL:   DefaultMathJaxURL,

		typesetTimeout: DefaultTypesetTimeout,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// discardLogger returns a logger that writes nowhere.
func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithHighlighting enables chroma syntax highlighting for listings that
// declare a language, e.g. \begin{lstlisting}[language=Go].
func WithHighlighting() Option {
	return func(c *config) {
		c.highlight = true
	}
}

// WithTypesetter sets the loader of the math engine used for typeset requests.
// Panics if loader is nil (programmer error).
func WithTypesetter(loader EngineLoader) Option {
	if loader == nil {
		panic("tex2html: WithTypesetter loader must not be nil")
	}
	return func(c *config) {
		c.loader = loader
	}
}

// WithLogger sets the logger for typesetting diagnostics.
// Panics if logger is nil (programmer error).
func WithLogger(logger logrus.FieldLogger) Option {
	if logger == nil {
		panic("tex2html: WithLogger logger must not be nil")
	}
	return func(c *config) {
		c.logger = logger
	}
}

// WithLoadTimeout bounds the engine load.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithLoadTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tex2html: WithLoadTimeout duration must be positive")
	}
	return func(c *config) {
		c.loadTimeout = d
	}
}

// WithTypesetTimeout bounds each typeset pass once the engine is loaded.
// Panics if d <= 0.
func WithTypesetTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tex2html: WithTypesetTimeout duration must be positive")
	}
	return func(c *config) {
		c.typesetTimeout = d
	}
}

// WithTick sets the debounce interval between the first request and its pass.
// Zero runs the pass on the next scheduler turn. Panics if d < 0.
func WithTick(d time.Duration) Option {
	if d < 0 {
		panic("tex2html: WithTick duration must not be negative")
	}
	return func(c *config) {
		c.tick = d
	}
}

// WithScriptURL sets the MathJax script a Session loads into its page.
// Panics if url is empty (programmer error).
func WithScriptURL(url string) Option {
	if url == "" {
		panic("tex2html: WithScriptURL url must not be empty")
	}
	return func(c *config) {
		c.scriptURL = url
	}
}

// WithBrowserBin sets the Chrome or Chromium binary a Session launches.
// Without it, ROD_BROWSER_BIN is used, then rod's own lookup and download.
func WithBrowserBin(path string) Option {
	return func(c *config) {
		c.browserBin = path
	}
}
