package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellSubscribeReplaysCurrentValue(t *testing.T) {
	c := NewCell(3)
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	assert.Equal(t, 3, <-ch)
}

func TestCellSlowSubscriberSeesLatestOnly(t *testing.T) {
	c := NewCell(0)
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	for i := 1; i <= 10; i++ {
		c.Set(i)
	}

	assert.Equal(t, 10, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestCellUpdateIsAtomic(t *testing.T) {
	c := NewCell(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Update(func(v int) int { return v + 1 })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5000, c.Value())
}

func TestCellUnsubscribeClosesChannel(t *testing.T) {
	c := NewCell("a")
	ch, unsubscribe := c.Subscribe()
	<-ch

	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
	assert.Equal(t, 0, c.Subscribers())

	// Writes after unsubscribe must not panic on the closed channel.
	c.Set("b")
}
