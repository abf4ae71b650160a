// Package scope provides a single-slot cancellation scope: starting new work
// cancels whatever the scope was running before.
package scope

import (
	"context"
	"sync"
)

// Scope holds at most one cancel func. The zero value is ready to use.
type Scope struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// Start cancels the previous work, if any, and returns a context for the new
// work together with a release func. Release must be called when the work
// finishes; it only clears the slot if no newer work has started since.
func (s *Scope) Start(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}
	return ctx, release
}

// Cancel aborts the current work, if any.
func (s *Scope) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Active reports whether work started through s is still running.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
