package stream

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// Forever keeps a shared stream running after its last subscriber leaves,
// until Close is called.
const Forever time.Duration = -1

// StartFunc starts an upstream producer that pushes values into emit. The
// returned func stops the producer; no value may be emitted once it returns.
type StartFunc[T any] func(emit func(T)) (stop func())

// Shared runs an upstream producer only while somebody is subscribed. When
// the last subscriber detaches the producer is kept alive for the keep-alive
// window, so that a quick re-subscribe reuses the running producer. The
// latest value survives restarts and is replayed to new subscribers.
type Shared[T any] struct {
	clock     clock.Clock
	keepAlive time.Duration
	start     StartFunc[T]
	out       *Cell[T]

	mu     sync.Mutex
	refs   int
	stop   func()
	timer  clock.Timer
	gen    int
	starts int
	closed bool
}

// NewShared creates a shared stream replaying initial until the producer
// emits.
func NewShared[T any](initial T, clk clock.Clock, keepAlive time.Duration, start StartFunc[T]) *Shared[T] {
	return &Shared[T]{
		clock:     clk,
		keepAlive: keepAlive,
		start:     start,
		out:       NewCell(initial),
	}
}

// Value returns the latest value, whether or not the producer is running
func (s *Shared[T]) Value() T {
	return s.out.Value()
}

// Subscribe implements Source. The first subscriber starts the producer.
func (s *Shared[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	s.refs++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.stop == nil && !s.closed {
		s.stop = s.start(s.out.Set)
		s.starts++
	}
	ch, unsubscribe := s.out.Subscribe()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			unsubscribe()
			s.release()
		})
	}
}

// Active reports whether the producer is running
func (s *Shared[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Starts returns how many times the producer has been started
func (s *Shared[T]) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Close stops the producer for good. Existing subscriptions keep the last
// value but receive nothing further.
func (s *Shared[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.stopLocked()
}

func (s *Shared[T]) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs--
	if s.refs > 0 || s.stop == nil || s.keepAlive < 0 {
		return
	}
	if s.keepAlive == 0 {
		s.stopLocked()
		return
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.keepAlive, func() { s.expire(gen) })
}

func (s *Shared[T]) expire(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A timer that could not be stopped in time must not tear down a
	// producer that was re-acquired since it was armed.
	if gen != s.gen || s.refs > 0 {
		return
	}
	s.timer = nil
	s.stopLocked()
}

func (s *Shared[T]) stopLocked() {
	if s.stop == nil {
		return
	}
	stop := s.stop
	s.stop = nil
	stop()
}

// Combine2 returns a producer that emits fn(a, b) every time either source
// changes, once both have delivered a value.
func Combine2[A, B, T any](a Source[A], b Source[B], fn func(A, B) T) StartFunc[T] {
	return func(emit func(T)) func() {
		chA, unsubscribeA := a.Subscribe()
		chB, unsubscribeB := b.Subscribe()
		done := make(chan struct{})
		finished := make(chan struct{})

		go func() {
			defer close(finished)
			var (
				va           A
				vb           B
				haveA, haveB bool
			)
			for {
				select {
				case <-done:
					return
				case v, ok := <-chA:
					if !ok {
						chA = nil
						continue
					}
					va, haveA = v, true
				case v, ok := <-chB:
					if !ok {
						chB = nil
						continue
					}
					vb, haveB = v, true
				}
				if haveA && haveB {
					emit(fn(va, vb))
				}
			}
		}()

		return func() {
			close(done)
			<-finished
			unsubscribeA()
			unsubscribeB()
		}
	}
}

// Forward returns a producer that re-emits every value of src
func Forward[T any](src Source[T]) StartFunc[T] {
	return func(emit func(T)) func() {
		ch, unsubscribe := src.Subscribe()
		done := make(chan struct{})
		finished := make(chan struct{})

		go func() {
			defer close(finished)
			for {
				select {
				case <-done:
					return
				case v, ok := <-ch:
					if !ok {
						return
					}
					emit(v)
				}
			}
		}()

		return func() {
			close(done)
			<-finished
			unsubscribe()
		}
	}
}
