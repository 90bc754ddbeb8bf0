package disruptor

import (
	"runtime"
	"sync/atomic"
)

// Sequencer coordinates access to a ring buffer using atomic CAS
// operations: Next claims a sequence number for a producer, Publish writes
// the value into the claimed slot and makes it visible to the consumer.
type Sequencer[T any] struct {
	rb *RingBuffer[T]
}

// NewSequencer creates a sequencer for the given ring buffer.
func NewSequencer[T any](rb *RingBuffer[T]) *Sequencer[T] {
	return &Sequencer[T]{rb: rb}
}

// Next claims the next sequence number for writing. It spins briefly while
// the buffer is full, then gives up with ErrBufferFull.
func (s *Sequencer[T]) Next() (uint64, error) {
	const maxSpins = 10000

	for spins := 0; spins < maxSpins; spins++ {
		current := atomic.LoadUint64(&s.rb.cursor)
		next := current + 1

		available := s.rb.loadGating() + s.rb.bufferSize
		if next > available {
			runtime.Gosched()
			continue
		}

		if atomic.CompareAndSwapUint64(&s.rb.cursor, current, next) {
			return next, nil
		}
	}

	return 0, ErrBufferFull
}

// Publish writes value into the slot claimed by seq and marks it ready for
// the consumer. The store is a release barrier: every write above it must
// be visible before the consumer observes the new sequence number.
func (s *Sequencer[T]) Publish(seq uint64, value T) {
	index := seq & s.rb.indexMask
	slot := &s.rb.slots[index]
	slot.Value = value
	atomic.StoreUint64(&slot.SequenceNum, seq)
}
