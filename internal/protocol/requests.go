// Package protocol defines the typed request, reply, and event shapes
// that cross the middleware channels. These are the core's contract
// surface with its external collaborators (§6): transport-agnostic Go
// structs, never a wire format — FIX and REST codecs live outside the
// core and are non-goals here.
package protocol

import (
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

// OrderPlacementRequest asks the engine of the resolved instrument to
// accept a new order.
type OrderPlacementRequest struct {
	Session       session.Session
	ClientOrderID string
	Instrument    instrument.Descriptor
	Side          orders.Side
	Type          orders.Type
	TIF           orders.TimeInForce
	Quantity      int64
	Price         int64
	AccountID     string
}

// OrderModificationRequest asks the engine to amend a resting order's price
// and/or quantity.
type OrderModificationRequest struct {
	Session       session.Session
	ClientOrderID string
	OrderID       uint64
	Instrument    instrument.Descriptor
	NewPrice      int64
	NewQuantity   int64
}

// OrderCancellationRequest asks the engine to remove a resting order.
type OrderCancellationRequest struct {
	Session       session.Session
	ClientOrderID string
	OrderID       uint64
	Instrument    instrument.Descriptor
}

// MarketDataRequest subscribes a session to one instrument's market data.
// Per spec an empty or multi-instrument list is always a reject; the core
// only ever resolves a single instrument per request.
type MarketDataRequest struct {
	Session      session.Session
	Instruments  []instrument.Descriptor
	SubscriberID string
}

// SecurityStatusRequest asks for the current trading phase of one
// instrument.
type SecurityStatusRequest struct {
	Session    session.Session
	Instrument instrument.Descriptor
}

// InstrumentStateRequest is an internal request (sent by the generator,
// never an external gateway) asking the engine to capture a point-in-time
// snapshot. On an unresolved instrument the execution system logs and
// drops rather than rejecting: the request carries no route for a reply.
type InstrumentStateRequest struct {
	Instrument instrument.Descriptor
	Result     chan<- InstrumentState
}

// InstrumentState is the per-instrument persisted/captured snapshot:
// {Instrument, OrderBook, LastTrade, Info}. The trading engine does not
// fill LastTrade when it captures a snapshot, so it is nil in every state
// the engine produces.
type InstrumentState struct {
	Instrument *instrument.Instrument
	Orders     []orders.Order
	LastTrade  *orders.Trade
	Info       StateInfo
}

// StateInfo carries metadata about the snapshot that isn't part of the book
// itself (sequence counters needed to resume issuing ids identically after
// a recover).
type StateInfo struct {
	NextOrderID  uint64
	NextTradeID  uint64
	NextSequence uint64
	Phase        string
}
