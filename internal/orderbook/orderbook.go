package orderbook

import (
	"fmt"
	"strings"

	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/orders"
)

// Book maintains the buy (bid) and sell (ask) sides of one instrument's
// market. Each instrument owns exactly one Book; a Book never crosses
// instruments.
//
// Two red-black trees hold price levels (bids sorted descending, asks
// ascending) with cached min pointers for O(1) best-bid/ask access. A hash
// map from order ID to node gives O(1) cancel without a tree search.
type Book struct {
	instrumentID instrument.ID
	bids         *RBTree
	asks         *RBTree
	orders       map[uint64]*OrderNode
}

// New creates an empty book for the given instrument.
func New(id instrument.ID) *Book {
	return &Book{
		instrumentID: id,
		bids:         NewRBTree(true),
		asks:         NewRBTree(false),
		orders:       make(map[uint64]*OrderNode),
	}
}

// InstrumentID returns the instrument this book belongs to.
func (b *Book) InstrumentID() instrument.ID { return b.instrumentID }

// AddOrder inserts an order into the appropriate side of the book.
func (b *Book) AddOrder(order *orders.Order) error {
	if _, exists := b.orders[order.ID]; exists {
		return fmt.Errorf("orderbook: order %d already exists", order.ID)
	}

	tree := b.getTree(order.Side)
	level := tree.Get(order.Price)
	if level == nil {
		level = NewPriceLevel(order.Price)
		tree.Insert(level)
	}

	node := level.Append(order)
	b.orders[order.ID] = node
	return nil
}

// CancelOrder removes an order from the book, returning it, or nil if not
// present.
func (b *Book) CancelOrder(orderID uint64) *orders.Order {
	node, exists := b.orders[orderID]
	if !exists {
		return nil
	}

	order := node.Order
	level := node.level
	tree := b.getTree(order.Side)

	level.Remove(node)
	delete(b.orders, orderID)

	if level.IsEmpty() {
		tree.Delete(level.Price)
	}

	return order
}

// GetOrder retrieves an order by ID.
func (b *Book) GetOrder(orderID uint64) *orders.Order {
	node, exists := b.orders[orderID]
	if !exists {
		return nil
	}
	return node.Order
}

// Orders returns every resting order across both sides, in no particular
// order. Used by the persistence controller to capture a point-in-time
// snapshot of the book.
func (b *Book) Orders() []*orders.Order {
	out := make([]*orders.Order, 0, len(b.orders))
	for _, node := range b.orders {
		out = append(out, node.Order)
	}
	return out
}

// BestBid returns the highest bid price level, or nil if there are no bids.
func (b *Book) BestBid() *PriceLevel { return b.bids.Min() }

// BestAsk returns the lowest ask price level, or nil if there are no asks.
func (b *Book) BestAsk() *PriceLevel { return b.asks.Min() }

// Spread returns best ask minus best bid, or 0 if either side is empty.
func (b *Book) Spread() int64 {
	bid, ask := b.BestBid(), b.BestAsk()
	if bid == nil || ask == nil {
		return 0
	}
	return ask.Price - bid.Price
}

// MidPrice returns the midpoint between best bid and ask, or 0 if either
// side is empty.
func (b *Book) MidPrice() int64 {
	bid, ask := b.BestBid(), b.BestAsk()
	if bid == nil || ask == nil {
		return 0
	}
	return (bid.Price + ask.Price) / 2
}

// BidLevels returns the number of distinct bid price levels.
func (b *Book) BidLevels() int { return b.bids.Size() }

// AskLevels returns the number of distinct ask price levels.
func (b *Book) AskLevels() int { return b.asks.Size() }

// TotalOrders returns the total number of resting orders in the book.
func (b *Book) TotalOrders() int { return len(b.orders) }

// BidDepth returns the top N bid price levels, best first. levels <= 0
// returns every level.
func (b *Book) BidDepth(levels int) []*PriceLevel { return b.getDepth(b.bids, levels) }

// AskDepth returns the top N ask price levels, best first. levels <= 0
// returns every level.
func (b *Book) AskDepth(levels int) []*PriceLevel { return b.getDepth(b.asks, levels) }

func (b *Book) getDepth(tree *RBTree, maxLevels int) []*PriceLevel {
	result := make([]*PriceLevel, 0)
	count := 0

	tree.ForEach(func(level *PriceLevel) bool {
		result = append(result, level)
		count++
		if maxLevels > 0 && count >= maxLevels {
			return false
		}
		return true
	})

	return result
}

// ApplyFill records a fill against a resting order: increases its filled
// quantity, shrinks the price level's total, and removes the order from the
// book once it is fully filled.
func (b *Book) ApplyFill(orderID uint64, fillQty int64) error {
	node, exists := b.orders[orderID]
	if !exists {
		return fmt.Errorf("orderbook: order %d not found", orderID)
	}

	order := node.Order
	order.FilledQty += fillQty
	node.level.UpdateQuantity(-fillQty)

	if order.IsFilled() {
		b.CancelOrder(orderID)
	}

	return nil
}

func (b *Book) getTree(side orders.Side) *RBTree {
	if side == orders.SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *Book) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== instrument %d ===\n", b.instrumentID)

	asks := b.AskDepth(5)
	sb.WriteString("ASKS:\n")
	for i := len(asks) - 1; i >= 0; i-- {
		level := asks[i]
		fmt.Fprintf(&sb, "  %d: %d qty (%d orders)\n", level.Price, level.TotalQty, level.Count())
	}

	if spread := b.Spread(); spread > 0 {
		fmt.Fprintf(&sb, "--- spread: %d ---\n", spread)
	} else {
		sb.WriteString("--- no spread ---\n")
	}

	bids := b.BidDepth(5)
	sb.WriteString("BIDS:\n")
	for _, level := range bids {
		fmt.Fprintf(&sb, "  %d: %d qty (%d orders)\n", level.Price, level.TotalQty, level.Count())
	}

	return sb.String()
}
