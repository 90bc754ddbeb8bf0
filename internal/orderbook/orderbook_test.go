package orderbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quodfinancial/venue-simulator/internal/orders"
)

func newOrder(id uint64, side orders.Side, price, qty int64) *orders.Order {
	return &orders.Order{
		ID:        id,
		Price:     price,
		Quantity:  qty,
		Timestamp: time.Unix(0, int64(id)),
		Side:      side,
		Type:      orders.TypeLimit,
		Status:    orders.StatusNew,
	}
}

func TestBook_AddOrder_RejectsDuplicateID(t *testing.T) {
	b := New(1)
	require.NoError(t, b.AddOrder(newOrder(1, orders.SideBuy, 100, 10)))
	assert.Error(t, b.AddOrder(newOrder(1, orders.SideBuy, 101, 5)))
}

func TestBook_BestBidAsk(t *testing.T) {
	b := New(1)
	require.NoError(t, b.AddOrder(newOrder(1, orders.SideBuy, 100, 10)))
	require.NoError(t, b.AddOrder(newOrder(2, orders.SideBuy, 105, 10)))
	require.NoError(t, b.AddOrder(newOrder(3, orders.SideSell, 110, 10)))
	require.NoError(t, b.AddOrder(newOrder(4, orders.SideSell, 108, 10)))

	assert.Equal(t, int64(105), b.BestBid().Price)
	assert.Equal(t, int64(108), b.BestAsk().Price)
	assert.Equal(t, int64(3), b.Spread())
}

func TestBook_CancelOrder_RemovesEmptyLevel(t *testing.T) {
	b := New(1)
	require.NoError(t, b.AddOrder(newOrder(1, orders.SideBuy, 100, 10)))
	assert.Equal(t, 1, b.BidLevels())

	cancelled := b.CancelOrder(1)
	require.NotNil(t, cancelled)
	assert.Equal(t, 0, b.BidLevels())
	assert.Nil(t, b.CancelOrder(1))
}

func TestBook_PriceTimePriority_FIFOWithinLevel(t *testing.T) {
	b := New(1)
	require.NoError(t, b.AddOrder(newOrder(1, orders.SideBuy, 100, 10)))
	require.NoError(t, b.AddOrder(newOrder(2, orders.SideBuy, 100, 20)))

	level := b.BestBid()
	require.NotNil(t, level)
	head := level.Head()
	require.NotNil(t, head)
	assert.Equal(t, uint64(1), head.Order.ID)
	assert.Equal(t, uint64(2), head.Next().Order.ID)
}

func TestBook_ApplyFill_RemovesOnFullFill(t *testing.T) {
	b := New(1)
	require.NoError(t, b.AddOrder(newOrder(1, orders.SideBuy, 100, 10)))

	require.NoError(t, b.ApplyFill(1, 6))
	assert.Equal(t, int64(4), b.GetOrder(1).RemainingQty())

	require.NoError(t, b.ApplyFill(1, 4))
	assert.Nil(t, b.GetOrder(1))
	assert.Equal(t, 0, b.BidLevels())
}

func TestBook_Depth_RespectsLimit(t *testing.T) {
	b := New(1)
	for i := int64(0); i < 10; i++ {
		require.NoError(t, b.AddOrder(newOrder(uint64(i+1), orders.SideBuy, 100+i, 1)))
	}
	assert.Len(t, b.BidDepth(3), 3)
	assert.Len(t, b.BidDepth(0), 10)
}
