package tex2html

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Engine typesets math inside a document host.
// A nil scope means the whole document; otherwise scope holds CSS selectors.
type Engine interface {
	Typeset(ctx context.Context, scope []string) error
}

// EngineClearer is implemented by engines that can drop the state left by
// an earlier pass before typesetting the same elements again.
type EngineClearer interface {
	Clear(ctx context.Context, scope []string) error
}

// EngineLoader makes an Engine available, loading it on first use.
type EngineLoader interface {
	LoadEngine(ctx context.Context) (Engine, error)
}

// EngineLoaderFunc adapts a function to EngineLoader.
type EngineLoaderFunc func(ctx context.Context) (Engine, error)

// LoadEngine calls f(ctx).
func (f EngineLoaderFunc) LoadEngine(ctx context.Context) (Engine, error) {
	return f(ctx)
}

// scopeKind tags the pending scope of the next pass.
type scopeKind int

const (
	scopeNone     scopeKind = iota // nothing requested
	scopeGlobal                    // whole document
	scopeElements                  // listed selectors only
)

// pendingScope accumulates the requests of one pass. A whole-document
// request absorbs every element request made before or after it.
type pendingScope struct {
	kind     scopeKind
	elements []string
	seen     map[string]struct{}
}

func (p *pendingScope) add(selectors []string) {
	if len(selectors) == 0 {
		p.kind = scopeGlobal
		p.elements, p.seen = nil, nil
		return
	}
	if p.kind == scopeGlobal {
		return
	}

	p.kind = scopeElements
	if p.seen == nil {
		p.seen = make(map[string]struct{}, len(selectors))
	}
	for _, sel := range selectors {
		if _, dup := p.seen[sel]; dup {
			continue
		}
		p.seen[sel] = struct{}{}
		p.elements = append(p.elements, sel)
	}
}

// take returns the accumulated scope and resets p. ok is false when
// nothing was requested.
func (p *pendingScope) take() (scope []string, ok bool) {
	kind, elements := p.kind, p.elements
	*p = pendingScope{}

	switch kind {
	case scopeGlobal:
		return nil, true
	case scopeElements:
		return elements, true
	default:
		return nil, false
	}
}

// engineKey is the single-flight key of the engine load.
const engineKey = "engine"

// Scheduler coalesces typeset requests into debounced passes over one
// lazily loaded engine.
//
// Requests made before the tick fires share a pass. The engine is loaded
// once: concurrent passes wait for the same load, a successful engine is
// reused, and a failed load is forgotten so a later pass retries. Failures
// are logged, never returned. A Scheduler is safe for concurrent use.
type Scheduler struct {
	loader      EngineLoader
	log         logrus.FieldLogger
	tick        time.Duration
	loadTimeout time.Duration
	afterFunc   func(time.Duration, func())

	typesetTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	loads  singleflight.Group
	passes sync.WaitGroup

	mu        sync.Mutex
	pending   pendingScope
	scheduled bool
	closed    bool
	engine    Engine
}

// NewScheduler creates a Scheduler for the engine provided by loader.
// WithTick, WithLoadTimeout, WithTypesetTimeout and WithLogger apply; other
// options are ignored.
// Panics if loader is nil (programmer error).
func NewScheduler(loader EngineLoader, opts ...Option) *Scheduler {
	if loader == nil {
		panic("tex2html: NewScheduler loader must not be nil")
	}
	cfg := newConfig(opts)
	return newScheduler(loader, cfg)
}

func newScheduler(loader EngineLoader, cfg config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		loader:      loader,
		log:         cfg.logger,
		tick:        cfg.tick,
		loadTimeout: cfg.loadTimeout,
		afterFunc:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		ctx:         ctx,
		cancel:      cancel,

		typesetTimeout: cfg.typesetTimeout,
	}
}

// Schedule requests a typeset pass over the elements matching targets, or
// the whole document when no usable target remains. It never blocks.
func (s *Scheduler) Schedule(targets ...string) {
	selectors := s.filterTargets(targets)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.pending.add(selectors)
	if s.scheduled {
		return
	}
	s.scheduled = true
	s.passes.Add(1)
	s.afterFunc(s.tick, s.runPass)
}

// filterTargets trims targets and drops blank or unparsable selectors.
func (s *Scheduler) filterTargets(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	selectors := make([]string, 0, len(targets))
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, err := cascadia.Compile(target); err != nil {
			s.log.WithField("target", target).Debugf("dropping typeset target: %v", err)
			continue
		}
		selectors = append(selectors, target)
	}
	return selectors
}

// Wait blocks until every scheduled pass has finished.
func (s *Scheduler) Wait() {
	s.passes.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() when ctx ends
// first; the passes keep running.
func (s *Scheduler) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.passes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops pending requests, cancels running passes and waits for them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.passes.Wait()
}

// runPass executes one debounced pass.
func (s *Scheduler) runPass() {
	defer s.passes.Done()

	s.mu.Lock()
	s.scheduled = false
	scope, ok := s.pending.take()
	s.mu.Unlock()
	if !ok {
		return
	}

	engine, err := s.loadEngine(s.ctx)
	if err != nil {
		s.log.WithError(err).Warn("typesetting skipped")
		return
	}
	s.typeset(s.ctx, engine, scope)
}

// passOutcome is how the engine side of a pass ended. An empty msg is success.
type passOutcome struct {
	msg string
	err error
}

// typeset clears then typesets scope within the typeset timeout. The engine
// runs in its own goroutine so one that ignores its context still ends the
// pass. Errors and panics are logged.
func (s *Scheduler) typeset(ctx context.Context, engine Engine, scope []string) {
	log := s.log.WithField("scope", describeScope(scope))

	ctx, cancel := context.WithTimeout(ctx, s.typesetTimeout)
	defer cancel()

	done := make(chan passOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- passOutcome{msg: fmt.Sprintf("typeset pass panicked: %v", r)}
			}
		}()
		done <- runEngine(ctx, engine, scope)
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.WithError(fmt.Errorf("%w: timed out after %s", ErrTypeset, s.typesetTimeout)).Warn("typesetting failed")
			return
		}
		log.Debug("typeset pass cancelled")
	case out := <-done:
		switch {
		case out.msg == "":
			log.Debug("typeset pass done")
		case out.err != nil:
			log.WithError(out.err).Warn(out.msg)
		default:
			log.Error(out.msg)
		}
	}
}

func runEngine(ctx context.Context, engine Engine, scope []string) passOutcome {
	if clearer, ok := engine.(EngineClearer); ok {
		if err := clearer.Clear(ctx, scope); err != nil {
			return passOutcome{msg: "clearing previous typeset failed", err: err}
		}
	}
	if err := engine.Typeset(ctx, scope); err != nil {
		return passOutcome{msg: "typesetting failed", err: err}
	}
	return passOutcome{}
}

// loadEngine returns the cached engine or joins the single in-flight load.
func (s *Scheduler) loadEngine(ctx context.Context) (Engine, error) {
	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()
	if engine != nil {
		return engine, nil
	}

	v, err, shared := s.loads.Do(engineKey, func() (any, error) {
		s.mu.Lock()
		cached := s.engine
		s.mu.Unlock()
		if cached != nil {
			return cached, nil
		}

		engine, err := s.loadWithTimeout(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.engine = engine
		s.mu.Unlock()
		return engine, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("shared", shared).Debug("typeset engine ready")
	return v.(Engine), nil
}

// loadWithTimeout bounds the load with the configured timeout. The loader
// runs in its own goroutine so one that ignores its context still times out.
func (s *Scheduler) loadWithTimeout(ctx context.Context) (Engine, error) {
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	type result struct {
		engine Engine
		err    error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ErrEngineLoad, r)}
			}
		}()
		engine, err := s.loader.LoadEngine(ctx)
		done <- result{engine: engine, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrEngineTimeout, s.loadTimeout)
		}
		return nil, ctx.Err()
	case r := <-done:
		switch {
		case r.err != nil && errors.Is(r.err, ErrEngineLoad):
			return nil, r.err
		case r.err != nil:
			return nil, fmt.Errorf("%w: %v", ErrEngineLoad, r.err)
		case r.engine == nil:
			return nil, ErrEngineUnavailable
		}
		return r.engine, nil
	}
}

func describeScope(scope []string) string {
	if scope == nil {
		return "document"
	}
	return strings.Join(scope, ", ")
}
