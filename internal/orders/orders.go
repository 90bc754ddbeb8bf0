// Package orders defines the order and fill types shared by the order book
// and the matching core.
//
// Prices and quantities are fixed-point int64 (ticks), never float64: a
// financial matching engine cannot tolerate IEEE-754 rounding error
// accumulating across millions of fills.
package orders

import (
	"fmt"
	"time"

	"github.com/quodfinancial/venue-simulator/internal/instrument"
)

// Side is the side of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Type is the order type.
type Type int

const (
	// TypeLimit rests in the book until filled or cancelled.
	TypeLimit Type = iota
	// TypeMarket executes immediately at the best available price, with no
	// price protection.
	TypeMarket
)

func (t Type) String() string {
	if t == TypeMarket {
		return "MARKET"
	}
	return "LIMIT"
}

// TimeInForce is independent of Type: it governs what happens to the
// quantity that could not be matched immediately.
type TimeInForce int

const (
	// TIFDay rests in the book until filled or explicitly cancelled; no
	// end-of-day expiry is applied.
	TIFDay TimeInForce = iota
	// TIFIOC (Immediate-or-Cancel) fills whatever it can immediately, then
	// cancels the remainder.
	TIFIOC
	// TIFFOK (Fill-or-Kill) must fill entirely and immediately, or not at
	// all.
	TIFFOK
)

func (t TimeInForce) String() string {
	switch t {
	case TIFIOC:
		return "IOC"
	case TIFFOK:
		return "FOK"
	default:
		return "DAY"
	}
}

// Status is the lifecycle state of an order.
type Status int

const (
	StatusNew Status = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Order is a single resting or transient order against one instrument's
// book. One Order belongs to exactly one engine, identified by
// InstrumentID; the book never crosses instruments.
type Order struct {
	ID            uint64
	ClientOrderID string
	SequenceNum   uint64
	InstrumentID  instrument.ID
	Price         int64 // ticks; ignored for market orders
	Quantity      int64
	FilledQty     int64
	Timestamp     time.Time
	AccountID     string
	Side          Side
	Type          Type
	TIF           TimeInForce
	Status        Status
}

// RemainingQty is the unfilled quantity.
func (o *Order) RemainingQty() int64 { return o.Quantity - o.FilledQty }

// IsFilled reports whether the order has been completely filled.
func (o *Order) IsFilled() bool { return o.FilledQty >= o.Quantity }

// IsActive reports whether the order can still be matched or amended.
func (o *Order) IsActive() bool {
	return o.Status == StatusNew || o.Status == StatusPartiallyFilled
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{ID:%d, %s %d@%d, Filled:%d, Status:%s}",
		o.ID, o.Side, o.Quantity, o.Price, o.FilledQty, o.Status)
}

// Fill is one execution between a resting (maker) and an incoming (taker)
// order.
type Fill struct {
	TradeID        uint64
	MakerOrderID   uint64
	TakerOrderID   uint64
	Price          int64
	Quantity       int64
	Timestamp      time.Time
	MakerAccountID string
	TakerAccountID string
	TakerSide      Side
}

// ExecutionResult is the outcome of processing one incoming order.
type ExecutionResult struct {
	Order        *Order
	Fills        []Fill
	Accepted     bool
	RejectReason string
	RestingQty   int64
}

// Trade is a completed execution from the perspective of reporting and
// persistence: it combines both sides of a Fill into one reportable record.
type Trade struct {
	ID            uint64
	InstrumentID  instrument.ID
	Price         int64
	Quantity      int64
	BuyOrderID    uint64
	SellOrderID   uint64
	BuyerAccount  string
	SellerAccount string
	Timestamp     time.Time
	SequenceNum   uint64
}
