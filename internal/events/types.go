// Package events defines the audit trail recorded alongside trading engine
// processing.
//
// Event sourcing here serves an audit/replay purpose distinct from the
// persistence controller's periodic state snapshots (see package
// persistence): every accepted order, fill, and cancellation is appended to
// an immutable log, giving a complete, ordered history independent of
// whatever state the engine happens to hold at snapshot time.
package events

import (
	"time"

	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/orders"
)

// Type identifies the kind of recorded event.
type Type uint8

const (
	TypeNewOrder Type = iota + 1
	TypeOrderAccepted
	TypeOrderRejected
	TypeFill
	TypeOrderCancelled
)

func (t Type) String() string {
	switch t {
	case TypeNewOrder:
		return "NEW_ORDER"
	case TypeOrderAccepted:
		return "ORDER_ACCEPTED"
	case TypeOrderRejected:
		return "ORDER_REJECTED"
	case TypeFill:
		return "FILL"
	case TypeOrderCancelled:
		return "ORDER_CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Header carries the fields common to every event.
type Header struct {
	SequenceNum  uint64
	Timestamp    time.Time
	Type         Type
	InstrumentID instrument.ID
}

// NewOrderEvent records a new order submission.
type NewOrderEvent struct {
	Header
	OrderID       uint64
	ClientOrderID string
	Side          orders.Side
	OrderType     orders.Type
	Price         int64
	Quantity      int64
	AccountID     string
}

// OrderAcceptedEvent records that an order passed validation.
type OrderAcceptedEvent struct {
	Header
	OrderID    uint64
	RestingQty int64
}

// OrderRejectedEvent records that an order was rejected.
type OrderRejectedEvent struct {
	Header
	OrderID      uint64
	RejectReason string
}

// FillEvent records one execution.
type FillEvent struct {
	Header
	TradeID        uint64
	Price          int64
	Quantity       int64
	MakerOrderID   uint64
	TakerOrderID   uint64
	MakerAccountID string
	TakerAccountID string
	TakerSide      orders.Side
}

// OrderCancelledEvent records an order cancellation.
type OrderCancelledEvent struct {
	Header
	OrderID      uint64
	CancelledQty int64
	Reason       string
}
