// Package engine implements the per-instrument trading engine: a
// single-consumer command queue (built on the generic LMAX-disruptor-style
// ring buffer in internal/disruptor) wrapped around an order book, a
// client-notification cache, and a market-data publisher.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/disruptor"
	"github.com/quodfinancial/venue-simulator/internal/events"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/marketdata"
	"github.com/quodfinancial/venue-simulator/internal/matching"
	"github.com/quodfinancial/venue-simulator/internal/middleware"
	"github.com/quodfinancial/venue-simulator/internal/notify"
	"github.com/quodfinancial/venue-simulator/internal/obsmetrics"
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

type orderMeta struct {
	session       session.Session
	clientOrderID string
}

// TradingEngine serializes every command for one instrument through a
// single consumer goroutine. Per-instrument total ordering and
// inter-instrument parallelism both fall directly out of that: two
// engines never touch each other's state, and nothing within one engine
// ever runs concurrently with itself.
type TradingEngine struct {
	instrumentID instrument.ID
	inst         *instrument.Instrument
	core         *matching.Core
	publisher    *marketdata.Publisher
	notifications *notify.Cache
	channels     *middleware.Channels
	audit        *events.Batcher
	cfg          *config.Config
	log          zerolog.Logger
	metrics      *obsmetrics.Metrics

	phase protocol.Phase

	orderMeta     map[uint64]orderMeta
	sessionOrders map[session.Session]map[uint64]struct{}

	rb       *disruptor.RingBuffer[Command]
	seq      *disruptor.Sequencer[Command]
	consumer *disruptor.Consumer[Command]
}

// New constructs an engine for inst, bound to channels for reply dispatch
// and audit for append-only event logging. audit may be nil, in which case
// the engine skips audit logging entirely.
func New(inst *instrument.Instrument, cfg *config.Config, channels *middleware.Channels, audit *events.Batcher, log zerolog.Logger, metrics *obsmetrics.Metrics) *TradingEngine {
	id := inst.Identifier
	rb := disruptor.NewRingBuffer[Command](disruptor.DefaultConfig())
	e := &TradingEngine{
		instrumentID:  id,
		inst:          inst,
		core:          matching.New(id),
		publisher:     marketdata.NewPublisher(),
		notifications: notify.New(),
		channels:      channels,
		audit:         audit,
		cfg:           cfg,
		log:           log.With().Uint64("instrument", uint64(id)).Logger(),
		metrics:       metrics,
		phase:         protocol.PhaseClosed,
		orderMeta:     make(map[uint64]orderMeta),
		sessionOrders: make(map[session.Session]map[uint64]struct{}),
		rb:            rb,
		seq:           disruptor.NewSequencer[Command](rb),
	}
	e.consumer = disruptor.NewConsumer[Command](rb, e.handle)
	return e
}

// InstrumentID returns the instrument this engine owns.
func (e *TradingEngine) InstrumentID() instrument.ID { return e.instrumentID }

// Start begins draining the command queue.
func (e *TradingEngine) Start() { e.consumer.Start() }

// Shutdown stops draining once the in-flight command (if any) finishes.
func (e *TradingEngine) Shutdown() { e.consumer.Shutdown() }

// Enqueue publishes cmd onto the engine's private queue. Returns
// disruptor.ErrBufferFull if the queue is saturated.
func (e *TradingEngine) Enqueue(cmd Command) error {
	seqNum, err := e.seq.Next()
	if err != nil {
		return err
	}
	e.seq.Publish(seqNum, cmd)
	return nil
}

type replyingCommand interface {
	Replying() bool
}

// handle is the disruptor consumer's sole callback: it must never panic
// out, per the command contract's catch-all requirement.
func (e *TradingEngine) handle(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("command", cmd.Name()).Msg("command execution failed")
		}
	}()

	start := time.Now()
	cmd.Execute(e)
	if e.metrics != nil {
		e.metrics.RecordCommand(fmt.Sprintf("%d", e.instrumentID), cmd.Name(), time.Since(start))
	}

	if rc, ok := cmd.(replyingCommand); ok && rc.Replying() {
		e.dispatchNotifications()
	}
}

func (e *TradingEngine) dispatchNotifications() {
	d := e.notifications.Drain()

	for _, r := range d.ExecutionReports {
		e.emit(e.channels.TradingReply.ExecutionReport.Emit(r))
	}
	for _, r := range d.BusinessRejects {
		e.emit(e.channels.TradingReply.BusinessMessageReject.Emit(r))
	}
	for _, r := range d.PlacementConfirmations {
		e.emit(e.channels.TradingReply.OrderPlacementConfirmation.Emit(r))
	}
	for _, r := range d.PlacementRejects {
		e.emit(e.channels.TradingReply.OrderPlacementReject.Emit(r))
	}
	for _, r := range d.ModificationConfirmations {
		e.emit(e.channels.TradingReply.OrderModificationConfirmation.Emit(r))
	}
	for _, r := range d.ModificationRejects {
		e.emit(e.channels.TradingReply.OrderModificationReject.Emit(r))
	}
	for _, r := range d.CancellationConfirmations {
		e.emit(e.channels.TradingReply.OrderCancellationConfirmation.Emit(r))
	}
	for _, r := range d.CancellationRejects {
		e.emit(e.channels.TradingReply.OrderCancellationReject.Emit(r))
	}
	for _, r := range d.MarketDataSnapshots {
		e.emit(e.channels.TradingReply.MarketDataSnapshot.Emit(r))
	}
	for _, r := range d.MarketDataUpdates {
		e.emit(e.channels.TradingReply.MarketDataUpdate.Emit(r))
	}
	for _, r := range d.MarketDataRejects {
		e.emit(e.channels.TradingReply.MarketDataReject.Emit(r))
	}
	for _, r := range d.SecurityStatuses {
		e.emit(e.channels.TradingReply.SecurityStatus.Emit(r))
	}
}

// emit logs and drops ChannelUnbound the way the spec's internal
// dispatchers must: a gateway that never bound a reply receiver loses the
// reply, but the engine itself never blocks or fails on it.
func (e *TradingEngine) emit(err error) {
	if err != nil {
		e.log.Warn().Err(err).Msg("reply channel send failed")
	}
}

// acceptsNewOrders reports whether the current phase allows new order
// placement. Closed and Halted both reject; every auction phase and Open
// accept.
func (e *TradingEngine) acceptsNewOrders() bool {
	return e.phase != protocol.PhaseClosed && e.phase != protocol.PhaseHalted
}

func (e *TradingEngine) trackOrder(o *orders.Order, sess session.Session, clientOrderID string) {
	e.orderMeta[o.ID] = orderMeta{session: sess, clientOrderID: clientOrderID}
	set, ok := e.sessionOrders[sess]
	if !ok {
		set = make(map[uint64]struct{})
		e.sessionOrders[sess] = set
	}
	set[o.ID] = struct{}{}
}

func (e *TradingEngine) forgetOrder(orderID uint64) {
	meta, ok := e.orderMeta[orderID]
	if !ok {
		return
	}
	delete(e.orderMeta, orderID)
	if set, ok := e.sessionOrders[meta.session]; ok {
		delete(set, orderID)
		if len(set) == 0 {
			delete(e.sessionOrders, meta.session)
		}
	}
}

func (e *TradingEngine) publishMarketDataUpdate() {
	e.publisher.PublishUpdate(e.core.Book(), func(u protocol.MarketDataUpdate) {
		e.notifications.AddMarketDataUpdate(u)
	})
}
