// Package scope runs fire-and-forget background tasks bound to the lifetime
// of an owner (a screen, a coordinator). Closing the scope cancels the
// context handed to every task and abandons whatever is still running.
package scope

import (
	"context"
	"errors"
	"sync"

	"github.com/juju/loggo/v2"
	"gopkg.in/tomb.v2"
)

var logger = loggo.GetLogger("authguard.scope")

// Task is a unit of background work. A returned error is logged and
// otherwise dropped; it never kills the scope.
type Task func(ctx context.Context) error

// Scope tracks background tasks for one owner
type Scope struct {
	tomb   tomb.Tomb
	ctx    context.Context
	logger loggo.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a running scope that reports task failures to the package
// logger.
func New() *Scope {
	return NewWithLogger(logger)
}

// NewWithLogger creates a running scope that reports to log
func NewWithLogger(log loggo.Logger) *Scope {
	s := &Scope{logger: log}

	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	// The tomb must always track at least one goroutine, otherwise Go
	// panics once the tasks have drained. This one lives until Close.
	s.tomb.Go(func() error {
		<-s.tomb.Dying()
		cancel()
		return nil
	})
	return s
}

// Go starts task in the background. It reports false, without running the
// task, once the scope has been closed.
func (s *Scope) Go(name string, task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debugf("scope closed, dropping task %q", name)
		return false
	}
	s.tomb.Go(func() error {
		if err := task(s.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				s.logger.Debugf("task %q abandoned: %v", name, err)
				return nil
			}
			s.logger.Errorf("task %q failed: %v", name, err)
		}
		return nil
	})
	return true
}

// Close cancels the scope. Running tasks are not waited for.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.tomb.Kill(nil)
}

// Dying is closed when the scope is closed
func (s *Scope) Dying() <-chan struct{} {
	return s.tomb.Dying()
}

// Wait closes the scope and blocks until every task has returned
func (s *Scope) Wait() {
	s.Close()
	_ = s.tomb.Wait()
}
