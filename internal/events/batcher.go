package events

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Batcher buffers events on a background goroutine and writes them to a
// Log in groups, moving the write off the caller's goroutine. Each event in
// a group is still written by its own Log.Append call, so the Log flushes
// (and, in sync mode, fsyncs) once per event, not once per group.
type Batcher struct {
	log           *Log
	queue         chan interface{}
	batchSize     int
	flushInterval time.Duration
	shutdownCh    chan struct{}
	shutdownDone  chan struct{}
}

// NewBatcher creates a batcher writing to log. batchSize and
// flushInterval default to 1000 events / 10ms when non-positive.
func NewBatcher(log *Log, batchSize int, flushInterval time.Duration) *Batcher {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Millisecond
	}

	return &Batcher{
		log:           log,
		queue:         make(chan interface{}, batchSize*2),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		shutdownCh:    make(chan struct{}),
		shutdownDone:  make(chan struct{}),
	}
}

// Start begins the batching loop on a new goroutine.
func (b *Batcher) Start() { go b.loop() }

func (b *Batcher) loop() {
	defer close(b.shutdownDone)

	batch := make([]interface{}, 0, b.batchSize)
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-b.queue:
			batch = append(batch, event)
			if len(batch) >= b.batchSize {
				b.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				b.flush(batch)
				batch = batch[:0]
			}

		case <-b.shutdownCh:
			if len(batch) > 0 {
				b.flush(batch)
			}
			for {
				select {
				case event := <-b.queue:
					if _, err := b.log.Append(event); err != nil {
						log.Error().Err(err).Msg("events: failed to append during drain")
					}
				default:
					return
				}
			}
		}
	}
}

func (b *Batcher) flush(batch []interface{}) {
	for _, event := range batch {
		if _, err := b.log.Append(event); err != nil {
			log.Error().Err(err).Msg("events: failed to append event")
		}
	}
}

// Queue enqueues event for batched writing. Non-blocking: if the queue is
// full the event is dropped and logged, which should only happen under
// sustained overload.
func (b *Batcher) Queue(event interface{}) {
	select {
	case b.queue <- event:
	default:
		log.Warn().Type("event_type", event).Msg("events: queue full, dropping event")
	}
}

// Shutdown flushes remaining events and waits for the loop to exit.
func (b *Batcher) Shutdown() {
	close(b.shutdownCh)
	<-b.shutdownDone
}
