package tex2html

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
)

// DefaultMathJaxURL is the MathJax 3 build loaded when none is configured.
const DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js"

// JavaScript evaluated in the host page. Selector lists arrive as JSON;
// null stands for the whole document.
const (
	engineReadyJS = `() => !!(window.MathJax && window.MathJax.typesetPromise && window.MathJax.startup && window.MathJax.startup.promise)`

	engineConfigJS = `() => {
	if (window.MathJax) { return; }
	window.MathJax = {
		tex: {inlineMath: [["$", "$"]], displayMath: [["$$", "$$"]], processEscapes: true},
		startup: {typeset: false},
	};
}`

	engineStartupJS = `() => window.MathJax.startup.promise.then(() => true)`

	scopeNodesJS = `const nodes = (selectors) => selectors === null ? undefined :
	selectors.flatMap((s) => Array.from(document.querySelectorAll(s)));`

	typesetJS = `(selectors) => {
	` + scopeNodesJS + `
	const scope = nodes(selectors);
	if (scope !== undefined && scope.length === 0) { return 0; }
	return window.MathJax.typesetPromise(scope).then(() => scope === undefined ? -1 : scope.length);
}`

	clearJS = `(selectors) => {
	if (typeof window.MathJax.typesetClear !== "function") { return false; }
	` + scopeNodesJS + `
	window.MathJax.typesetClear(nodes(selectors));
	return true;
}`
)

// MathJaxLoader loads MathJax into a browser page and exposes it as an Engine.
type MathJaxLoader struct {
	page      *rod.Page
	scriptURL string
}

// NewMathJaxLoader creates a loader for page. An empty scriptURL selects
// DefaultMathJaxURL.
func NewMathJaxLoader(page *rod.Page, scriptURL string) *MathJaxLoader {
	if scriptURL == "" {
		scriptURL = DefaultMathJaxURL
	}
	return &MathJaxLoader{page: page, scriptURL: scriptURL}
}

// LoadEngine injects the MathJax script unless the page already has one,
// then waits for its startup to finish.
func (l *MathJaxLoader) LoadEngine(ctx context.Context) (Engine, error) {
	page := l.page.Context(ctx)

	ready, err := page.Eval(engineReadyJS)
	if err != nil {
		return nil, fmt.Errorf("%w: probing page: %v", ErrEngineLoad, err)
	}

	if !ready.Value.Bool() {
		if _, err := page.Eval(engineConfigJS); err != nil {
			return nil, fmt.Errorf("%w: configuring engine: %v", ErrEngineLoad, err)
		}
		if err := page.AddScriptTag(l.scriptURL, ""); err != nil {
			return nil, fmt.Errorf("%w: loading %s: %v", ErrEngineLoad, l.scriptURL, err)
		}
		if err := page.Wait(rod.Eval(engineReadyJS)); err != nil {
			return nil, fmt.Errorf("%w: waiting for engine: %v", ErrEngineLoad, err)
		}
	}

	if _, err := page.Eval(engineStartupJS); err != nil {
		return nil, fmt.Errorf("%w: engine startup: %v", ErrEngineLoad, err)
	}
	return &mathJaxEngine{page: l.page}, nil
}

// mathJaxEngine drives a loaded MathJax instance.
type mathJaxEngine struct {
	page *rod.Page
}

// Typeset renders the math inside the elements matching scope.
func (e *mathJaxEngine) Typeset(ctx context.Context, scope []string) error {
	if _, err := e.page.Context(ctx).Eval(typesetJS, scope); err != nil {
		return fmt.Errorf("%w: %v", ErrTypeset, err)
	}
	return nil
}

// Clear forgets the math MathJax typeset earlier inside scope. Builds
// without typesetClear are left alone.
func (e *mathJaxEngine) Clear(ctx context.Context, scope []string) error {
	if _, err := e.page.Context(ctx).Eval(clearJS, scope); err != nil {
		return fmt.Errorf("%w: clearing: %v", ErrTypeset, err)
	}
	return nil
}

// Compile-time interface checks.
var (
	_ EngineLoader  = (*MathJaxLoader)(nil)
	_ Engine        = (*mathJaxEngine)(nil)
	_ EngineClearer = (*mathJaxEngine)(nil)
)
