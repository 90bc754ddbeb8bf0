package disruptor

import (
	"runtime"
	"sync/atomic"
)

// Consumer drains a RingBuffer on a single goroutine, calling handle for
// each published value strictly in sequence order. It is the generic
// half of the disruptor pattern; callers supply the domain-specific
// handling (matching, persistence, phase transitions, ...).
type Consumer[T any] struct {
	rb           *RingBuffer[T]
	handle       func(T)
	running      atomic.Bool
	shutdownCh   chan struct{}
	shutdownDone chan struct{}
}

// NewConsumer creates a consumer bound to rb. handle is invoked from the
// consumer's own goroutine once Start is called, never concurrently.
func NewConsumer[T any](rb *RingBuffer[T], handle func(T)) *Consumer[T] {
	return &Consumer[T]{
		rb:           rb,
		handle:       handle,
		shutdownCh:   make(chan struct{}),
		shutdownDone: make(chan struct{}),
	}
}

// Start begins draining the ring buffer on a new goroutine.
func (c *Consumer[T]) Start() {
	c.running.Store(true)
	go c.loop()
}

func (c *Consumer[T]) loop() {
	defer close(c.shutdownDone)

	nextSequence := uint64(1)

	for c.running.Load() {
		index := nextSequence & c.rb.indexMask
		slot := &c.rb.slots[index]

		for {
			if atomic.LoadUint64(&slot.SequenceNum) == nextSequence {
				break
			}
			select {
			case <-c.shutdownCh:
				return
			default:
				runtime.Gosched()
			}
		}

		c.handle(slot.Value)
		c.rb.storeGating(nextSequence)
		nextSequence++
	}
}

// Shutdown stops the consumer and waits for its goroutine to exit. A value
// being handled when Shutdown is called is finished first; a slot the
// consumer is still waiting on is abandoned, even if it is published later.
func (c *Consumer[T]) Shutdown() {
	c.running.Store(false)
	close(c.shutdownCh)
	<-c.shutdownDone
}
