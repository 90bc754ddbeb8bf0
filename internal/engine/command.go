package engine

import (
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

// Command is a typed unit of work queued on a trading engine. Commands are
// value objects: they carry their input and nothing else. Execute runs
// under the engine's own single-consumer goroutine; it must never be
// called from any other goroutine.
type Command interface {
	Name() string
	Execute(e *TradingEngine)
}

// replying marks commands whose Execute populates the engine's
// notification cache, which the engine drains onto the reply channel once
// Execute returns. CaptureInstrumentState and StoreState are the two
// exceptions: they fill a result reference directly instead.
type replying struct{}

func (replying) Replying() bool { return true }

type nonReplying struct{}

func (nonReplying) Replying() bool { return false }

// PlaceOrderCommand inserts a new order into the book, matching it
// against resting liquidity per price-time priority.
type PlaceOrderCommand struct {
	replying
	Request protocol.OrderPlacementRequest
}

func (PlaceOrderCommand) Name() string { return "PlaceOrder" }

func (c PlaceOrderCommand) Execute(e *TradingEngine) { e.placeOrder(c.Request) }

// AmendOrderCommand modifies a resting order's price and/or quantity.
type AmendOrderCommand struct {
	replying
	Request protocol.OrderModificationRequest
}

func (AmendOrderCommand) Name() string { return "AmendOrder" }

func (c AmendOrderCommand) Execute(e *TradingEngine) { e.amendOrder(c.Request) }

// CancelOrderCommand removes a resting order from the book.
type CancelOrderCommand struct {
	replying
	Request protocol.OrderCancellationRequest
}

func (CancelOrderCommand) Name() string { return "CancelOrder" }

func (c CancelOrderCommand) Execute(e *TradingEngine) { e.cancelOrder(c.Request) }

// ProcessSecurityStatusRequestCommand reports the instrument's current
// trading phase.
type ProcessSecurityStatusRequestCommand struct {
	replying
	Request protocol.SecurityStatusRequest
}

func (ProcessSecurityStatusRequestCommand) Name() string { return "ProcessSecurityStatusRequest" }

func (c ProcessSecurityStatusRequestCommand) Execute(e *TradingEngine) {
	e.processSecurityStatusRequest(c.Request)
}

// ProcessMarketDataRequestCommand registers a subscriber and emits an
// initial snapshot.
type ProcessMarketDataRequestCommand struct {
	replying
	Request      protocol.MarketDataRequest
	SubscriberID string
}

func (ProcessMarketDataRequestCommand) Name() string { return "ProcessMarketDataRequest" }

func (c ProcessMarketDataRequestCommand) Execute(e *TradingEngine) {
	e.processMarketDataRequest(c.Request, c.SubscriberID)
}

// CaptureInstrumentStateCommand fills Result with the engine's current
// state, for ad-hoc internal inspection (distinct from StoreState, which
// targets the persistence file). Result must have capacity for one send;
// Execute sends exactly once.
type CaptureInstrumentStateCommand struct {
	nonReplying
	Result chan<- protocol.InstrumentState
}

func (CaptureInstrumentStateCommand) Name() string { return "CaptureInstrumentState" }

func (c CaptureInstrumentStateCommand) Execute(e *TradingEngine) {
	c.Result <- e.captureState()
}

// StoreStateCommand fills Result with the engine's state for the
// persistence controller's store() pass.
type StoreStateCommand struct {
	nonReplying
	Result chan<- protocol.InstrumentState
}

func (StoreStateCommand) Name() string { return "StoreState" }

func (c StoreStateCommand) Execute(e *TradingEngine) {
	c.Result <- e.captureState()
}

// RecoverStateCommand loads the snapshot's resting orders and its id and
// sequence counters into the engine, then publishes the resulting market
// data to any subscribers. Last-trade data is not restored: the engine
// neither captures nor reads InstrumentState.LastTrade.
type RecoverStateCommand struct {
	replying
	State protocol.InstrumentState
}

func (RecoverStateCommand) Name() string { return "RecoverState" }

func (c RecoverStateCommand) Execute(e *TradingEngine) { e.recoverState(c.State) }

// NotifyClientDisconnectedCommand runs cancel-on-disconnect for every
// resting order attributed to Session and unsubscribes it from market
// data.
type NotifyClientDisconnectedCommand struct {
	replying
	Session session.Session
}

func (NotifyClientDisconnectedCommand) Name() string { return "NotifyClientDisconnected" }

func (c NotifyClientDisconnectedCommand) Execute(e *TradingEngine) {
	e.notifyClientDisconnected(c.Session)
}

// TickCommand runs the engine's per-tick hook. The hook does no work: it
// expires no working order and emits no notification.
type TickCommand struct {
	replying
}

func (TickCommand) Name() string { return "Tick" }

func (c TickCommand) Execute(e *TradingEngine) { e.tick() }

// PhaseTransitionCommand moves the engine's phase state machine and
// broadcasts the resulting SecurityStatus.
type PhaseTransitionCommand struct {
	replying
	Event protocol.PhaseTransitionEvent
}

func (PhaseTransitionCommand) Name() string { return "PhaseTransition" }

func (c PhaseTransitionCommand) Execute(e *TradingEngine) { e.phaseTransition(c.Event) }

// Side-effect-free helper used by placeOrder et al. to translate a fill
// into an ExecutionReport kind.
func executionKindFor(o *orders.Order) protocol.ExecReportKind {
	switch o.Status {
	case orders.StatusFilled:
		return protocol.ExecReportFill
	case orders.StatusPartiallyFilled:
		return protocol.ExecReportPartialFill
	case orders.StatusCancelled:
		return protocol.ExecReportCancelled
	default:
		return protocol.ExecReportNew
	}
}
