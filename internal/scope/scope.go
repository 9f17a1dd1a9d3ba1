// Package scope ties background work to an explicit lifetime. Closing a
// scope cancels its context and waits for every goroutine started through it.
package scope

import (
	"context"
	"sync"
)

// Scope owns a cancellable context and the goroutines running under it.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// New creates a scope derived from parent.
func New(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context returns the scope's context. It is cancelled by Close.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Done is closed once the scope is cancelled.
func (s *Scope) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Alive reports whether the scope has not been closed or cancelled.
func (s *Scope) Alive() bool {
	return s.ctx.Err() == nil
}

// Go runs fn in a goroutine bound to the scope. It returns false when the
// scope is already closed and fn was not started.
func (s *Scope) Go(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
	return true
}

// Close cancels the scope and waits for its goroutines. Safe to call twice.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
