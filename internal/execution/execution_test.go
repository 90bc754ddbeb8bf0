package execution

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quodfinancial/venue-simulator/internal/engine"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/middleware"
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

type fakeFleet struct {
	unicasts  []struct {
		id  instrument.ID
		cmd engine.Command
	}
	broadcasts []engine.Command
	unicastErr error
}

func (f *fakeFleet) Unicast(id instrument.ID, cmd engine.Command) error {
	if f.unicastErr != nil {
		return f.unicastErr
	}
	f.unicasts = append(f.unicasts, struct {
		id  instrument.ID
		cmd engine.Command
	}{id, cmd})
	return nil
}

func (f *fakeFleet) Broadcast(cmd engine.Command) {
	f.broadcasts = append(f.broadcasts, cmd)
}

func strPtr(s string) *string { return &s }

func testSystem(t *testing.T) (*System, *fakeFleet, *instrument.Cache, *middleware.Channels) {
	t.Helper()
	cache := instrument.NewCache()
	cache.AddInstrument(&instrument.Instrument{Symbol: strPtr("ACME")})
	fleet := &fakeFleet{}
	channels := middleware.NewChannels()
	sys := New(cache, fleet, &channels.TradingReply, zerolog.Nop())
	return sys, fleet, cache, channels
}

func TestProcessOrderPlacement_ResolvesAndUnicasts(t *testing.T) {
	sys, fleet, _, _ := testSystem(t)

	sys.ProcessOrderPlacement(protocol.OrderPlacementRequest{
		ClientOrderID: "C1",
		Instrument:    instrument.Descriptor{Symbol: strPtr("ACME")},
		Side:          orders.SideBuy,
		Type:          orders.TypeLimit,
		Quantity:      10,
		Price:         100,
	})

	require.Len(t, fleet.unicasts, 1)
	assert.Equal(t, "PlaceOrder", fleet.unicasts[0].cmd.Name())
}

func TestProcessOrderPlacement_RejectsUnknownSymbol(t *testing.T) {
	sys, fleet, _, channels := testSystem(t)
	var rejects []protocol.OrderPlacementReject
	channels.TradingReply.OrderPlacementReject.Bind(func(r protocol.OrderPlacementReject) { rejects = append(rejects, r) })

	sys.ProcessOrderPlacement(protocol.OrderPlacementRequest{
		ClientOrderID: "C1",
		Instrument:    instrument.Descriptor{Symbol: strPtr("NOPE")},
	})

	assert.Empty(t, fleet.unicasts)
	require.Len(t, rejects, 1)
	assert.Equal(t, "listing not found", rejects[0].Reason)
}

func TestProcessOrderPlacement_RejectsMalformedDescriptor(t *testing.T) {
	sys, _, _, channels := testSystem(t)
	var rejects []protocol.OrderPlacementReject
	channels.TradingReply.OrderPlacementReject.Bind(func(r protocol.OrderPlacementReject) { rejects = append(rejects, r) })

	sys.ProcessOrderPlacement(protocol.OrderPlacementRequest{ClientOrderID: "C1"})

	require.Len(t, rejects, 1)
	assert.Equal(t, "listing identification attributes set is malformed", rejects[0].Reason)
}

func TestProcessMarketData_RejectsEmptyInstrumentList(t *testing.T) {
	sys, _, _, channels := testSystem(t)
	var rejects []protocol.MarketDataReject
	channels.TradingReply.MarketDataReject.Bind(func(r protocol.MarketDataReject) { rejects = append(rejects, r) })

	sys.ProcessMarketData(protocol.MarketDataRequest{SubscriberID: "S1"})

	require.Len(t, rejects, 1)
	assert.Equal(t, "no instruments requested", rejects[0].Reason)
}

func TestProcessMarketData_RejectsMultipleInstruments(t *testing.T) {
	sys, _, _, channels := testSystem(t)
	var rejects []protocol.MarketDataReject
	channels.TradingReply.MarketDataReject.Bind(func(r protocol.MarketDataReject) { rejects = append(rejects, r) })

	sys.ProcessMarketData(protocol.MarketDataRequest{
		SubscriberID: "S1",
		Instruments: []instrument.Descriptor{
			{Symbol: strPtr("ACME")},
			{Symbol: strPtr("ACME")},
		},
	})

	require.Len(t, rejects, 1)
	assert.Equal(t, "multiple instruments requested", rejects[0].Reason)
}

func TestProcessMarketData_ResolvesSingleInstrument(t *testing.T) {
	sys, fleet, _, _ := testSystem(t)

	sys.ProcessMarketData(protocol.MarketDataRequest{
		SubscriberID: "S1",
		Instruments:  []instrument.Descriptor{{Symbol: strPtr("ACME")}},
	})

	require.Len(t, fleet.unicasts, 1)
	assert.Equal(t, "ProcessMarketDataRequest", fleet.unicasts[0].cmd.Name())
}

func TestProcessInstrumentState_DropsUnresolvedWithoutReject(t *testing.T) {
	sys, fleet, _, _ := testSystem(t)

	result := make(chan protocol.InstrumentState, 1)
	sys.ProcessInstrumentState(protocol.InstrumentStateRequest{
		Instrument: instrument.Descriptor{Symbol: strPtr("NOPE")},
		Result:     result,
	})

	assert.Empty(t, fleet.unicasts)
	select {
	case <-result:
		t.Fatal("expected no result for unresolved instrument")
	default:
	}
}

func TestHandleSessionTerminated_Broadcasts(t *testing.T) {
	sys, fleet, _, _ := testSystem(t)

	sys.HandleSessionTerminated(protocol.SessionTerminatedEvent{})

	require.Len(t, fleet.broadcasts, 1)
	assert.Equal(t, "NotifyClientDisconnected", fleet.broadcasts[0].Name())
}
