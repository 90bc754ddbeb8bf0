package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/middleware"
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

func testEngine(t *testing.T) (*TradingEngine, *middleware.Channels) {
	t.Helper()
	channels := middleware.NewChannels()
	inst := &instrument.Instrument{Identifier: instrument.ID(1)}
	e := New(inst, config.Default(), channels, nil, zerolog.Nop(), nil)
	e.phase = protocol.PhaseOpen
	return e, channels
}

func bindReplyCapture(channels *middleware.Channels) (confirmations *[]protocol.OrderPlacementConfirmation, rejects *[]protocol.OrderPlacementReject, reports *[]protocol.ExecutionReport) {
	var c []protocol.OrderPlacementConfirmation
	var r []protocol.OrderPlacementReject
	var er []protocol.ExecutionReport
	channels.TradingReply.OrderPlacementConfirmation.Bind(func(v protocol.OrderPlacementConfirmation) { c = append(c, v) })
	channels.TradingReply.OrderPlacementReject.Bind(func(v protocol.OrderPlacementReject) { r = append(r, v) })
	channels.TradingReply.ExecutionReport.Bind(func(v protocol.ExecutionReport) { er = append(er, v) })
	return &c, &r, &er
}

func TestPlaceOrderCommand_RestsWhenNoContraLiquidity(t *testing.T) {
	e, channels := testEngine(t)
	confirmations, _, _ := bindReplyCapture(channels)

	sess := session.NewFix(uuid.New())
	cmd := PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: sess, ClientOrderID: "C1", Side: orders.SideBuy,
		Type: orders.TypeLimit, TIF: orders.TIFDay, Quantity: 100, Price: 1000,
	}}
	cmd.Execute(e)
	e.dispatchNotifications()

	require.Len(t, *confirmations, 1)
	assert.Equal(t, orders.StatusNew, (*confirmations)[0].Status)
	assert.Equal(t, 1, e.core.Book().TotalOrders())
}

func TestPlaceOrderCommand_RejectsWhenClosed(t *testing.T) {
	e, channels := testEngine(t)
	e.phase = protocol.PhaseClosed
	_, rejects, _ := bindReplyCapture(channels)

	cmd := PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: session.NewFix(uuid.New()), ClientOrderID: "C1",
		Side: orders.SideBuy, Type: orders.TypeLimit, TIF: orders.TIFDay,
		Quantity: 100, Price: 1000,
	}}
	cmd.Execute(e)
	e.dispatchNotifications()

	require.Len(t, *rejects, 1)
	assert.Equal(t, "instrument not open for trading", (*rejects)[0].Reason)
}

func TestPlaceOrderCommand_CrossingOrdersFillAndNotifyBothSides(t *testing.T) {
	e, channels := testEngine(t)
	_, _, reports := bindReplyCapture(channels)

	makerSession := session.NewFix(uuid.New())
	makerCmd := PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: makerSession, ClientOrderID: "MAKER", Side: orders.SideSell,
		Type: orders.TypeLimit, TIF: orders.TIFDay, Quantity: 50, Price: 1000,
	}}
	makerCmd.Execute(e)
	e.dispatchNotifications()

	takerSession := session.NewFix(uuid.New())
	takerCmd := PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: takerSession, ClientOrderID: "TAKER", Side: orders.SideBuy,
		Type: orders.TypeLimit, TIF: orders.TIFDay, Quantity: 50, Price: 1000,
	}}
	takerCmd.Execute(e)
	e.dispatchNotifications()

	require.Len(t, *reports, 2)
	sessions := []session.Session{(*reports)[0].Session, (*reports)[1].Session}
	assert.Contains(t, sessions, makerSession)
	assert.Contains(t, sessions, takerSession)
	assert.Equal(t, 0, e.core.Book().TotalOrders())
}

func TestCancelOrderCommand_RemovesRestingOrder(t *testing.T) {
	e, channels := testEngine(t)
	confirmations, _, _ := bindReplyCapture(channels)
	var cancelConfirms []protocol.OrderCancellationConfirmation
	channels.TradingReply.OrderCancellationConfirmation.Bind(func(v protocol.OrderCancellationConfirmation) {
		cancelConfirms = append(cancelConfirms, v)
	})

	sess := session.NewFix(uuid.New())
	place := PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: sess, ClientOrderID: "C1", Side: orders.SideBuy,
		Type: orders.TypeLimit, TIF: orders.TIFDay, Quantity: 10, Price: 500,
	}}
	place.Execute(e)
	e.dispatchNotifications()
	require.Len(t, *confirmations, 1)
	orderID := (*confirmations)[0].OrderID

	cancel := CancelOrderCommand{Request: protocol.OrderCancellationRequest{
		Session: sess, ClientOrderID: "C2", OrderID: orderID,
	}}
	cancel.Execute(e)
	e.dispatchNotifications()

	require.Len(t, cancelConfirms, 1)
	assert.Equal(t, 0, e.core.Book().TotalOrders())
}

func TestNotifyClientDisconnectedCommand_CancelsRestingOrders(t *testing.T) {
	e, channels := testEngine(t)
	e.cfg.CancelOnDisconnect = true
	_, _, reports := bindReplyCapture(channels)

	sess := session.NewFix(uuid.New())
	place := PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: sess, ClientOrderID: "C1", Side: orders.SideBuy,
		Type: orders.TypeLimit, TIF: orders.TIFDay, Quantity: 10, Price: 500,
	}}
	place.Execute(e)
	e.dispatchNotifications()

	disconnect := NotifyClientDisconnectedCommand{Session: sess}
	disconnect.Execute(e)
	e.dispatchNotifications()

	require.NotEmpty(t, *reports)
	last := (*reports)[len(*reports)-1]
	assert.Equal(t, protocol.ExecReportCancelled, last.Kind)
	assert.Equal(t, 0, e.core.Book().TotalOrders())
}

func TestPhaseTransitionCommand_UpdatesPhaseAndBroadcastsStatus(t *testing.T) {
	e, channels := testEngine(t)
	var statuses []protocol.SecurityStatus
	channels.TradingReply.SecurityStatus.Bind(func(v protocol.SecurityStatus) { statuses = append(statuses, v) })

	cmd := PhaseTransitionCommand{Event: protocol.PhaseTransitionEvent{NewPhase: protocol.PhaseHalted}}
	cmd.Execute(e)
	e.dispatchNotifications()

	assert.Equal(t, protocol.PhaseHalted, e.phase)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Halted", statuses[0].Phase)
}

func TestCaptureInstrumentStateCommand_FillsResultChannel(t *testing.T) {
	e, _ := testEngine(t)
	place := PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: session.NewFix(uuid.New()), ClientOrderID: "C1", Side: orders.SideBuy,
		Type: orders.TypeLimit, TIF: orders.TIFDay, Quantity: 10, Price: 500,
	}}
	place.Execute(e)

	result := make(chan protocol.InstrumentState, 1)
	capture := CaptureInstrumentStateCommand{Result: result}
	capture.Execute(e)

	select {
	case state := <-result:
		require.Len(t, state.Orders, 1)
		assert.Equal(t, instrument.ID(1), state.Instrument.Identifier)
	case <-time.After(time.Second):
		t.Fatal("capture did not fill result channel")
	}
}

func TestEnqueueThenStart_ProcessesCommandAsynchronously(t *testing.T) {
	e, channels := testEngine(t)
	confirmations, _, _ := bindReplyCapture(channels)
	e.Start()
	defer e.Shutdown()

	require.NoError(t, e.Enqueue(PlaceOrderCommand{Request: protocol.OrderPlacementRequest{
		Session: session.NewFix(uuid.New()), ClientOrderID: "C1", Side: orders.SideBuy,
		Type: orders.TypeLimit, TIF: orders.TIFDay, Quantity: 10, Price: 500,
	}}))

	require.Eventually(t, func() bool { return len(*confirmations) == 1 }, time.Second, time.Millisecond)
}
