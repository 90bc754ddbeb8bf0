package protocol

import (
	"time"

	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

// ExecReportKind distinguishes the business event an ExecutionReport
// narrates.
type ExecReportKind int

const (
	ExecReportNew ExecReportKind = iota
	ExecReportPartialFill
	ExecReportFill
	ExecReportCancelled
	ExecReportExpired
)

// ExecutionReport narrates a change to a single order's lifecycle.
// Distinct from the placement/modification/cancellation confirmations:
// an ExecutionReport is emitted for fills and for cancellations generated
// by the engine itself (cancel-on-disconnect), not just in
// direct response to a client request.
type ExecutionReport struct {
	Session       session.Session
	Kind          ExecReportKind
	OrderID       uint64
	ClientOrderID string
	FilledQty     int64
	RemainingQty  int64
	LastPrice     int64
	LastQty       int64
	Status        orders.Status
}

// BusinessMessageReject is the catch-all reject used when a request cannot
// be resolved to a specific typed reject (e.g. an unroutable instrument
// lookup failure on a request type with no dedicated reject shape).
type BusinessMessageReject struct {
	Session       session.Session
	ClientOrderID string
	Reason        string
}

// OrderPlacementConfirmation acknowledges a successfully placed order.
type OrderPlacementConfirmation struct {
	Session       session.Session
	OrderID       uint64
	ClientOrderID string
	Status        orders.Status
}

// OrderPlacementReject rejects a placement request.
type OrderPlacementReject struct {
	Session       session.Session
	ClientOrderID string
	Reason        string
}

// OrderModificationConfirmation acknowledges a successful amend.
type OrderModificationConfirmation struct {
	Session       session.Session
	OrderID       uint64
	ClientOrderID string
	NewPrice      int64
	NewQuantity   int64
}

// OrderModificationReject rejects an amend request.
type OrderModificationReject struct {
	Session       session.Session
	OrderID       uint64
	ClientOrderID string
	Reason        string
}

// OrderCancellationConfirmation acknowledges a successful cancel.
type OrderCancellationConfirmation struct {
	Session       session.Session
	OrderID       uint64
	ClientOrderID string
}

// OrderCancellationReject rejects a cancel request.
type OrderCancellationReject struct {
	Session       session.Session
	OrderID       uint64
	ClientOrderID string
	Reason        string
}

// PriceLevelView is one level of aggregated depth in a market data
// snapshot or update.
type PriceLevelView struct {
	Price    int64
	Quantity int64
	Orders   int
}

// MarketDataSnapshot is the full depth picture sent on subscription.
type MarketDataSnapshot struct {
	Session      session.Session
	SubscriberID string
	Bids         []PriceLevelView
	Asks         []PriceLevelView
	LastPrice    int64
	LastQty      int64
	AsOf         time.Time
}

// MarketDataUpdate is an incremental depth change sent to existing
// subscribers after a book-mutating command.
type MarketDataUpdate struct {
	SubscriberID string
	Bids         []PriceLevelView
	Asks         []PriceLevelView
	LastPrice    int64
	LastQty      int64
	AsOf         time.Time
}

// MarketDataReject rejects a market-data subscription request.
type MarketDataReject struct {
	Session      session.Session
	SubscriberID string
	Reason       string
}

// SecurityStatus reports an instrument's current trading phase, either in
// direct reply to a SecurityStatusRequest or broadcast on a
// PhaseTransition.
type SecurityStatus struct {
	Session session.Session
	Phase   string
}
