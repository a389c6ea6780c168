package tex2html

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one session is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// SessionPool manages Sessions for parallel typesetting. Each session has
// its own browser, so sessions never contend for a page. Sessions are
// created lazily on first acquire to avoid startup delay.
type SessionPool struct {
	size     int
	opts     []Option
	sessions []*Session
	sem      chan *Session
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewSessionPool creates a pool with capacity for n sessions built with opts.
func NewSessionPool(n int, opts ...Option) *SessionPool {
	if n < 1 {
		n = 1
	}

	return &SessionPool{
		size:     n,
		opts:     opts,
		sessions: make([]*Session, 0, n),
		sem:      make(chan *Session, n),
	}
}

// Acquire gets a session from the pool, creating one if capacity allows.
// Blocks if all sessions are in use. Returns ErrPoolClosed after Close.
func (p *SessionPool) Acquire() (*Session, error) {
	select {
	case s, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return s, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		s := NewSession(p.opts...)
		p.sessions = append(p.sessions, s)
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	s, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return s, nil
}

// Release returns a session to the pool.
// The lock is held while sending; sem has room for every session, so the
// send never blocks.
func (p *SessionPool) Release(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.sem <- s
}

// Close releases all browser resources.
// Returns an aggregated error if multiple sessions fail to close.
func (p *SessionPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	sessions := p.sessions
	p.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *SessionPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS honors container quotas once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
