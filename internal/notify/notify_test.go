package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

func TestCache_DrainReturnsAccumulatedAndResets(t *testing.T) {
	c := New()
	c.AddExecutionReport(protocol.ExecutionReport{OrderID: 1})
	c.AddPlacementReject(protocol.OrderPlacementReject{Reason: "bad qty"})

	d := c.Drain()
	assert.Len(t, d.ExecutionReports, 1)
	assert.Len(t, d.PlacementRejects, 1)

	d2 := c.Drain()
	assert.Empty(t, d2.ExecutionReports)
	assert.Empty(t, d2.PlacementRejects)
}

func TestCache_AllNotificationKinds(t *testing.T) {
	c := New()
	c.AddBusinessReject(protocol.BusinessMessageReject{Reason: "x"})
	c.AddModificationReject(protocol.OrderModificationReject{Reason: "x"})
	c.AddCancellationReject(protocol.OrderCancellationReject{Reason: "x"})
	c.AddMarketDataUpdate(protocol.MarketDataUpdate{SubscriberID: "s1"})
	c.AddSecurityStatus(protocol.SecurityStatus{Phase: "Open"})

	d := c.Drain()
	assert.Len(t, d.BusinessRejects, 1)
	assert.Len(t, d.ModificationRejects, 1)
	assert.Len(t, d.CancellationRejects, 1)
	assert.Len(t, d.MarketDataUpdates, 1)
	assert.Len(t, d.SecurityStatuses, 1)
}
