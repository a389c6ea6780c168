package tex2html

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
)

// hostDocument is the empty page a Session typesets fragments in.
const hostDocument = `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body></body></html>`

// JavaScript for moving fragments in and out of the host page.
const (
	setBodyJS = `(html) => { document.body.innerHTML = html; }`

	readBackJS = `() => {
	const styles = document.getElementById("MJX-CHTML-styles");
	return {html: document.body.innerHTML, css: styles ? styles.textContent : ""};
}`
)

// TypesetResult is a fragment after the math engine ran over it.
type TypesetResult struct {
	// HTML is the typeset fragment. Engine output is not re-sanitized.
	HTML string

	// CSS is the stylesheet the engine generated for its output.
	CSS string
}

// Session owns one browser page hosting MathJax and typesets fragments in
// it through a Scheduler. The browser starts on first use. A Session
// serves one fragment at a time; use a SessionPool for parallel work.
type Session struct {
	cfg  config
	host *browserHost

	mu        sync.Mutex
	page      *rod.Page
	loader    EngineLoader
	scheduler *Scheduler
}

// NewSession creates a Session. WithScriptURL, WithBrowserBin, WithLogger,
// WithLoadTimeout, WithTypesetTimeout and WithTick apply.
func NewSession(opts ...Option) *Session {
	cfg := newConfig(opts)
	return &Session{
		cfg:  cfg,
		host: newBrowserHost(cfg.browserBin),
	}
}

// Typeset loads fragment into the page, runs a typeset pass over targets
// (the whole fragment when empty) and reads the result back.
//
// Browser failures are returned. If the engine cannot load, the pass is
// skipped with a warning and the fragment comes back untypeset. Typeset
// returns ctx.Err() as soon as ctx ends, even mid-pass.
func (s *Session) Typeset(ctx context.Context, fragment string, targets []string) (*TypesetResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensurePage(); err != nil {
		return nil, err
	}
	page := s.page.Context(ctx)

	if _, err := page.Eval(setBodyJS, fragment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := s.awaitPass(ctx, targets); err != nil {
		return nil, err
	}

	obj, err := page.Eval(readBackJS)
	if err != nil {
		return nil, fmt.Errorf("%w: reading page: %v", ErrPageLoad, err)
	}
	return &TypesetResult{
		HTML: obj.Value.Get("html").Str(),
		CSS:  obj.Value.Get("css").Str(),
	}, nil
}

// ensurePage opens the host page and its scheduler. Callers hold s.mu.
func (s *Session) ensurePage() error {
	if s.page != nil {
		return nil
	}

	page, err := s.host.newPage()
	if err != nil {
		return err
	}
	if err := page.SetDocumentContent(hostDocument); err != nil {
		_ = page.Close()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	s.page = page
	s.loader = NewMathJaxLoader(page, s.cfg.scriptURL)
	s.scheduler = newScheduler(s.loader, s.cfg)
	return nil
}

// awaitPass schedules a pass over targets and waits for it. When ctx ends
// first, the scheduler is closed in the background, cancelling the pass, and
// a fresh one takes its place. Callers hold s.mu.
func (s *Session) awaitPass(ctx context.Context, targets []string) error {
	s.scheduler.Schedule(targets...)
	err := s.scheduler.WaitContext(ctx)
	if err == nil {
		return ctx.Err()
	}

	abandoned := s.scheduler
	s.scheduler = newScheduler(s.loader, s.cfg)
	go abandoned.Close()
	s.cfg.logger.WithError(err).Debug("typeset pass abandoned")
	return err
}

// Close stops the scheduler and releases the browser.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.scheduler != nil {
		s.scheduler.Close()
		s.scheduler = nil
	}
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		s.page = nil
	}
	if err := s.host.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
