package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quodfinancial/venue-simulator/internal/orders"
)

func limitOrder(side orders.Side, price, qty int64) *orders.Order {
	return &orders.Order{InstrumentID: 1, Side: side, Type: orders.TypeLimit, Price: price, Quantity: qty}
}

func TestCore_RestsUnmatchedLimitOrder(t *testing.T) {
	c := New(1)
	result := c.Process(limitOrder(orders.SideBuy, 100, 10))

	assert.True(t, result.Accepted)
	assert.Empty(t, result.Fills)
	assert.Equal(t, orders.StatusNew, result.Order.Status)
	assert.Equal(t, int64(10), result.RestingQty)
}

func TestCore_MatchesAtMakerPrice(t *testing.T) {
	c := New(1)
	c.Process(limitOrder(orders.SideSell, 100, 10))

	result := c.Process(limitOrder(orders.SideBuy, 105, 10))

	require.Len(t, result.Fills, 1)
	assert.Equal(t, int64(100), result.Fills[0].Price)
	assert.Equal(t, orders.StatusFilled, result.Order.Status)
}

func TestCore_PartialFillRestsRemainder(t *testing.T) {
	c := New(1)
	c.Process(limitOrder(orders.SideSell, 100, 4))

	result := c.Process(limitOrder(orders.SideBuy, 100, 10))

	require.Len(t, result.Fills, 1)
	assert.Equal(t, int64(4), result.Fills[0].Quantity)
	assert.Equal(t, orders.StatusPartiallyFilled, result.Order.Status)
	assert.Equal(t, int64(6), result.RestingQty)
}

func TestCore_IOC_CancelsUnfilledRemainder(t *testing.T) {
	c := New(1)
	c.Process(limitOrder(orders.SideSell, 100, 4))

	order := limitOrder(orders.SideBuy, 100, 10)
	order.TIF = orders.TIFIOC
	result := c.Process(order)

	assert.Equal(t, orders.StatusCancelled, result.Order.Status)
	assert.Equal(t, int64(0), result.RestingQty)
	assert.Nil(t, c.GetOrder(order.ID))
}

func TestCore_FOK_RejectsWhenInsufficientLiquidity(t *testing.T) {
	c := New(1)
	c.Process(limitOrder(orders.SideSell, 100, 4))

	order := limitOrder(orders.SideBuy, 100, 10)
	order.TIF = orders.TIFFOK
	result := c.Process(order)

	assert.Empty(t, result.Fills)
	assert.Equal(t, orders.StatusCancelled, result.Order.Status)
}

func TestCore_FOK_FillsCompletelyWhenLiquiditySufficient(t *testing.T) {
	c := New(1)
	c.Process(limitOrder(orders.SideSell, 100, 10))

	order := limitOrder(orders.SideBuy, 100, 10)
	order.TIF = orders.TIFFOK
	result := c.Process(order)

	assert.Len(t, result.Fills, 1)
	assert.Equal(t, orders.StatusFilled, result.Order.Status)
}

func TestCore_MarketOrder_RejectsRemainderOnInsufficientLiquidity(t *testing.T) {
	c := New(1)
	c.Process(limitOrder(orders.SideSell, 100, 4))

	order := &orders.Order{InstrumentID: 1, Side: orders.SideBuy, Type: orders.TypeMarket, Quantity: 10}
	result := c.Process(order)

	assert.Len(t, result.Fills, 1)
	assert.Equal(t, orders.StatusCancelled, result.Order.Status)
	assert.Equal(t, "insufficient liquidity", result.RejectReason)
}

func TestCore_Cancel(t *testing.T) {
	c := New(1)
	result := c.Process(limitOrder(orders.SideBuy, 100, 10))

	cancelled, err := c.Cancel(result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)

	_, err = c.Cancel(result.Order.ID)
	assert.Error(t, err)
}

func TestCore_Amend_QuantityChangeLosesTimePriority(t *testing.T) {
	c := New(1)
	first := c.Process(limitOrder(orders.SideBuy, 100, 10))
	second := c.Process(limitOrder(orders.SideBuy, 100, 5))

	_, err := c.Amend(first.Order.ID, 100, 20)
	require.NoError(t, err)

	level := c.Book().BestBid()
	require.NotNil(t, level)
	assert.Equal(t, second.Order.ID, level.Head().Order.ID)
}

func TestCore_RejectsOrderForWrongInstrument(t *testing.T) {
	c := New(1)
	order := limitOrder(orders.SideBuy, 100, 10)
	order.InstrumentID = 2

	result := c.Process(order)
	assert.False(t, result.Accepted)
	assert.Equal(t, orders.StatusRejected, result.Order.Status)
}
