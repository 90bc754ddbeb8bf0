// Package matching implements the price-time priority matching core.
//
// A Core matches orders against exactly one instrument's order book. It is
// single-threaded by contract: Process must only be called from the
// goroutine that owns the enclosing engine's command queue. Determinism
// (same input sequence, same output) and the absence of locks in the hot
// path both depend on that single-writer discipline; concurrency is
// achieved by running one Core per instrument, not by sharing one Core
// across goroutines.
package matching

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/orderbook"
	"github.com/quodfinancial/venue-simulator/internal/orders"
)

// Core matches incoming orders against one instrument's resting book.
type Core struct {
	instrumentID instrument.ID
	book         *orderbook.Book
	sequenceNum  uint64
	tradeID      uint64
	orderID      uint64
}

// New creates a matching core for a single instrument.
func New(id instrument.ID) *Core {
	return &Core{
		instrumentID: id,
		book:         orderbook.New(id),
	}
}

// Book returns the underlying order book, for depth/snapshot queries.
func (c *Core) Book() *orderbook.Book { return c.book }

// NextOrderID generates the next order ID local to this instrument.
func (c *Core) NextOrderID() uint64 { return atomic.AddUint64(&c.orderID, 1) }

func (c *Core) nextTradeID() uint64 { return atomic.AddUint64(&c.tradeID, 1) }

func (c *Core) nextSequence() uint64 { return atomic.AddUint64(&c.sequenceNum, 1) }

// Process validates, sequences, and matches an incoming order, resting any
// unfilled limit quantity in the book.
func (c *Core) Process(order *orders.Order) *orders.ExecutionResult {
	result := &orders.ExecutionResult{Order: order, Fills: make([]orders.Fill, 0)}

	if order.InstrumentID != c.instrumentID {
		result.RejectReason = fmt.Sprintf("order targets instrument %d, core is for %d", order.InstrumentID, c.instrumentID)
		order.Status = orders.StatusRejected
		return result
	}
	if order.Quantity <= 0 {
		result.RejectReason = "quantity must be positive"
		order.Status = orders.StatusRejected
		return result
	}
	if order.Type == orders.TypeLimit && order.Price <= 0 {
		result.RejectReason = "limit order must have positive price"
		order.Status = orders.StatusRejected
		return result
	}

	if order.ID == 0 {
		order.ID = c.NextOrderID()
	}
	order.SequenceNum = c.nextSequence()
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now().UTC()
	}
	order.Status = orders.StatusNew
	result.Accepted = true

	result.Fills = c.match(order)

	if order.IsFilled() {
		order.Status = orders.StatusFilled
	} else if order.FilledQty > 0 {
		order.Status = orders.StatusPartiallyFilled
	}

	remaining := order.RemainingQty()
	if remaining > 0 {
		switch order.Type {
		case orders.TypeMarket:
			order.Status = orders.StatusCancelled
			result.RejectReason = "insufficient liquidity"
		default:
			switch order.TIF {
			case orders.TIFIOC:
				order.Status = orders.StatusCancelled
			case orders.TIFFOK:
				order.Status = orders.StatusCancelled
				result.RejectReason = "could not fill entire quantity"
			default:
				c.book.AddOrder(order)
				result.RestingQty = remaining
			}
		}
	}

	return result
}

func (c *Core) match(order *orders.Order) []orders.Fill {
	var fills []orders.Fill

	if order.TIF == orders.TIFFOK && !c.canFillEntirely(order) {
		return fills
	}

	getLevel, priceAcceptable := c.matchPlan(order)

	for order.RemainingQty() > 0 {
		level := getLevel()
		if level == nil || !priceAcceptable(level.Price) {
			break
		}

		for node := level.Head(); node != nil && order.RemainingQty() > 0; {
			maker := node.Order
			next := node.Next()

			fillQty := minInt64(order.RemainingQty(), maker.RemainingQty())
			fill := orders.Fill{
				TradeID:        c.nextTradeID(),
				MakerOrderID:   maker.ID,
				TakerOrderID:   order.ID,
				Price:          level.Price,
				Quantity:       fillQty,
				Timestamp:      time.Now().UTC(),
				MakerAccountID: maker.AccountID,
				TakerAccountID: order.AccountID,
				TakerSide:      order.Side,
			}
			fills = append(fills, fill)

			order.FilledQty += fillQty
			maker.FilledQty += fillQty
			level.UpdateQuantity(-fillQty)
			if maker.IsFilled() {
				maker.Status = orders.StatusFilled
				c.book.CancelOrder(maker.ID)
			} else {
				maker.Status = orders.StatusPartiallyFilled
			}

			node = next
		}
	}

	return fills
}

func (c *Core) matchPlan(order *orders.Order) (func() *orderbook.PriceLevel, func(int64) bool) {
	if order.Side == orders.SideBuy {
		return c.book.BestAsk, func(bookPrice int64) bool {
			return order.Type == orders.TypeMarket || bookPrice <= order.Price
		}
	}
	return c.book.BestBid, func(bookPrice int64) bool {
		return order.Type == orders.TypeMarket || bookPrice >= order.Price
	}
}

// canFillEntirely reports whether the resting book holds enough acceptable
// liquidity to fill order completely, used to gate fill-or-kill orders
// before any quantity is touched.
func (c *Core) canFillEntirely(order *orders.Order) bool {
	var depth []*orderbook.PriceLevel
	var priceOK func(int64) bool

	if order.Side == orders.SideBuy {
		depth = c.book.AskDepth(0)
		priceOK = func(p int64) bool { return order.Type == orders.TypeMarket || p <= order.Price }
	} else {
		depth = c.book.BidDepth(0)
		priceOK = func(p int64) bool { return order.Type == orders.TypeMarket || p >= order.Price }
	}

	remaining := order.Quantity
	for _, level := range depth {
		if !priceOK(level.Price) {
			break
		}
		if level.TotalQty >= remaining {
			return true
		}
		remaining -= level.TotalQty
	}
	return false
}

// Cancel removes a resting order from the book.
func (c *Core) Cancel(orderID uint64) (*orders.Order, error) {
	order := c.book.CancelOrder(orderID)
	if order == nil {
		return nil, fmt.Errorf("matching: order %d not found", orderID)
	}
	order.Status = orders.StatusCancelled
	return order, nil
}

// Amend cancels and replaces a resting order's price and/or quantity,
// re-queuing it at the back of its new price level (loses time priority,
// per standard amend semantics).
func (c *Core) Amend(orderID uint64, newPrice, newQty int64) (*orders.ExecutionResult, error) {
	existing := c.book.GetOrder(orderID)
	if existing == nil {
		return nil, fmt.Errorf("matching: order %d not found", orderID)
	}
	if newQty <= existing.FilledQty {
		return nil, fmt.Errorf("matching: amended quantity %d must exceed filled quantity %d", newQty, existing.FilledQty)
	}

	c.book.CancelOrder(orderID)
	existing.Price = newPrice
	existing.Quantity = newQty
	existing.Status = orders.StatusNew

	result := &orders.ExecutionResult{Order: existing, Fills: c.match(existing), Accepted: true}
	if existing.IsFilled() {
		existing.Status = orders.StatusFilled
	} else if existing.FilledQty > 0 {
		existing.Status = orders.StatusPartiallyFilled
	}
	if remaining := existing.RemainingQty(); remaining > 0 {
		c.book.AddOrder(existing)
		result.RestingQty = remaining
	}
	return result, nil
}

// GetOrder retrieves a resting order by ID.
func (c *Core) GetOrder(orderID uint64) *orders.Order { return c.book.GetOrder(orderID) }

// Counters returns the core's current id/sequence watermarks, for a
// persistence snapshot.
func (c *Core) Counters() (nextOrderID, nextTradeID, nextSequence uint64) {
	return atomic.LoadUint64(&c.orderID), atomic.LoadUint64(&c.tradeID), atomic.LoadUint64(&c.sequenceNum)
}

// Restore replaces the book's resting orders and counter watermarks from a
// persisted snapshot. Must only be called on an otherwise-empty core,
// before any Process call.
func (c *Core) Restore(restingOrders []orders.Order, nextOrderID, nextTradeID, nextSequence uint64) {
	for i := range restingOrders {
		o := restingOrders[i]
		c.book.AddOrder(&o)
	}
	atomic.StoreUint64(&c.orderID, nextOrderID)
	atomic.StoreUint64(&c.tradeID, nextTradeID)
	atomic.StoreUint64(&c.sequenceNum, nextSequence)
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
