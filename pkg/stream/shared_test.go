package stream

import (
	"fmt"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shortWait = 50 * time.Millisecond
	longWait  = 5 * time.Second
)

func receiveUntil[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	timeout := time.After(longWait)
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "channel closed before a matching value arrived")
			if match(v) {
				return v
			}
		case <-timeout:
			t.Fatal("timed out waiting for a matching value")
		}
	}
}

func TestSharedStartsLazily(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	src := NewCell(1)
	s := NewShared(0, clk, 5*time.Second, Forward[int](src))

	assert.False(t, s.Active())
	assert.Equal(t, 0, s.Starts())

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	assert.True(t, s.Active())
	receiveUntil(t, ch, func(v int) bool { return v == 1 })

	src.Set(2)
	receiveUntil(t, ch, func(v int) bool { return v == 2 })
}

func TestSharedKeepsProducerDuringKeepAlive(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	src := NewCell(1)
	s := NewShared(0, clk, 5*time.Second, Forward[int](src))

	_, unsubscribe := s.Subscribe()
	unsubscribe()

	require.NoError(t, clk.WaitAdvance(4*time.Second, longWait, 1))
	assert.True(t, s.Active())

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()
	receiveUntil(t, ch, func(v int) bool { return v == 1 })

	// The original timer has been stopped; moving past it must not stop the
	// re-acquired producer.
	clk.Advance(10 * time.Second)
	time.Sleep(shortWait)
	assert.True(t, s.Active())
	assert.Equal(t, 1, s.Starts())
}

func TestSharedStopsAfterKeepAlive(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	src := NewCell(1)
	s := NewShared(0, clk, 5*time.Second, Forward[int](src))

	ch, unsubscribe := s.Subscribe()
	receiveUntil(t, ch, func(v int) bool { return v == 1 })
	unsubscribe()

	require.NoError(t, clk.WaitAdvance(5*time.Second, longWait, 1))
	assert.Eventually(t, func() bool { return !s.Active() }, longWait, time.Millisecond)
	assert.Equal(t, 0, src.Subscribers())

	// The last value is retained and replayed on restart.
	assert.Equal(t, 1, s.Value())
	ch, unsubscribe = s.Subscribe()
	defer unsubscribe()
	assert.Equal(t, 1, <-ch)
	assert.Equal(t, 2, s.Starts())
}

func TestSharedForeverIgnoresSubscriberCount(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	src := NewCell("x")
	s := NewShared("", clk, Forever, Forward[string](src))

	_, unsubscribe := s.Subscribe()
	unsubscribe()
	clk.Advance(time.Hour)
	assert.True(t, s.Active())

	s.Close()
	assert.False(t, s.Active())
	assert.Equal(t, 0, src.Subscribers())

	// Closed streams do not restart.
	_, unsubscribe = s.Subscribe()
	defer unsubscribe()
	assert.False(t, s.Active())
}

func TestCombine2(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	a := NewCell(1)
	b := NewCell("one")
	s := NewShared("", clk, 0, Combine2[int, string](a, b, func(n int, word string) string {
		return fmt.Sprintf("%d:%s", n, word)
	}))

	ch, unsubscribe := s.Subscribe()
	receiveUntil(t, ch, func(v string) bool { return v == "1:one" })

	a.Set(2)
	receiveUntil(t, ch, func(v string) bool { return v == "2:one" })

	b.Set("two")
	receiveUntil(t, ch, func(v string) bool { return v == "2:two" })

	// A zero keep-alive stops immediately and detaches from both inputs.
	unsubscribe()
	assert.False(t, s.Active())
	assert.Equal(t, 0, a.Subscribers())
	assert.Equal(t, 0, b.Subscribers())
}
