package stream

import "sync"

// Source is anything that can be observed as a replay-latest stream.
type Source[T any] interface {
	// Subscribe returns a channel that immediately holds the current value
	// and then receives every later value. Slow readers only ever see the
	// latest value. The returned func detaches the subscription and closes
	// the channel.
	Subscribe() (<-chan T, func())
}

// SourceFunc adapts a plain subscribe function to Source
type SourceFunc[T any] func() (<-chan T, func())

// Subscribe implements Source
func (f SourceFunc[T]) Subscribe() (<-chan T, func()) {
	return f()
}

// Cell is a mutable value with replay-latest subscriptions. All writes go
// through the cell lock so that Update is an atomic read-modify-write.
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]chan T
	nextID int
}

// NewCell creates a cell holding initial
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Value returns the current value
func (c *Cell[T]) Value() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the value and notifies subscribers
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.broadcast()
}

// Update applies fn to the current value and stores the result. fn runs with
// the cell locked and must not touch the cell itself.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = fn(c.value)
	c.broadcast()
	return c.value
}

// Subscribe implements Source
func (c *Cell[T]) Subscribe() (<-chan T, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan T, 1)
	ch <- c.value
	id := c.nextID
	c.nextID++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Subscribers returns the number of attached subscriptions
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// broadcast must be called with c.mu held. Each subscriber channel has room
// for one value, so a pending value is replaced by the newer one.
func (c *Cell[T]) broadcast() {
	for _, ch := range c.subs {
		select {
		case ch <- c.value:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- c.value
		}
	}
}
