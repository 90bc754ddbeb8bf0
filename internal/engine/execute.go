package engine

import (
	"time"

	"github.com/quodfinancial/venue-simulator/internal/events"
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

func (e *TradingEngine) queueAudit(event interface{}) {
	if e.audit != nil {
		e.audit.Queue(event)
	}
}

func (e *TradingEngine) header(t events.Type) events.Header {
	return events.Header{Timestamp: time.Now().UTC(), Type: t, InstrumentID: e.instrumentID}
}

func (e *TradingEngine) placeOrder(req protocol.OrderPlacementRequest) {
	if !e.acceptsNewOrders() {
		e.notifications.AddPlacementReject(protocol.OrderPlacementReject{
			Session:       req.Session,
			ClientOrderID: req.ClientOrderID,
			Reason:        "instrument not open for trading",
		})
		return
	}

	order := &orders.Order{
		ClientOrderID: req.ClientOrderID,
		InstrumentID:  e.instrumentID,
		Price:         req.Price,
		Quantity:      req.Quantity,
		AccountID:     req.AccountID,
		Side:          req.Side,
		Type:          req.Type,
		TIF:           req.TIF,
	}

	result := e.core.Process(order)

	e.queueAudit(&events.NewOrderEvent{
		Header:        e.header(events.TypeNewOrder),
		OrderID:       order.ID,
		ClientOrderID: req.ClientOrderID,
		Side:          req.Side,
		OrderType:     req.Type,
		Price:         req.Price,
		Quantity:      req.Quantity,
		AccountID:     req.AccountID,
	})

	if !result.Accepted {
		e.notifications.AddPlacementReject(protocol.OrderPlacementReject{
			Session:       req.Session,
			ClientOrderID: req.ClientOrderID,
			Reason:        result.RejectReason,
		})
		e.queueAudit(&events.OrderRejectedEvent{
			Header:       e.header(events.TypeOrderRejected),
			OrderID:      order.ID,
			RejectReason: result.RejectReason,
		})
		return
	}

	e.trackOrder(order, req.Session, req.ClientOrderID)

	e.notifications.AddPlacementConfirmation(protocol.OrderPlacementConfirmation{
		Session:       req.Session,
		OrderID:       order.ID,
		ClientOrderID: req.ClientOrderID,
		Status:        order.Status,
	})
	e.queueAudit(&events.OrderAcceptedEvent{
		Header:     e.header(events.TypeOrderAccepted),
		OrderID:    order.ID,
		RestingQty: result.RestingQty,
	})

	e.applyFills(result.Fills)

	if order.IsFilled() || order.Status == orders.StatusCancelled {
		e.forgetOrder(order.ID)
	}
	if len(result.Fills) > 0 {
		e.emitExecutionReport(order, req.Session, req.ClientOrderID)
	}
	if len(result.Fills) > 0 || result.RestingQty > 0 {
		e.publishMarketDataUpdate()
	}
}

func (e *TradingEngine) amendOrder(req protocol.OrderModificationRequest) {
	result, err := e.core.Amend(req.OrderID, req.NewPrice, req.NewQuantity)
	if err != nil {
		e.notifications.AddModificationReject(protocol.OrderModificationReject{
			Session:       req.Session,
			OrderID:       req.OrderID,
			ClientOrderID: req.ClientOrderID,
			Reason:        err.Error(),
		})
		return
	}

	e.trackOrder(result.Order, req.Session, req.ClientOrderID)

	e.notifications.AddModificationConfirmation(protocol.OrderModificationConfirmation{
		Session:       req.Session,
		OrderID:       req.OrderID,
		ClientOrderID: req.ClientOrderID,
		NewPrice:      req.NewPrice,
		NewQuantity:   req.NewQuantity,
	})

	e.applyFills(result.Fills)

	if result.Order.IsFilled() {
		e.forgetOrder(result.Order.ID)
	}
	if len(result.Fills) > 0 {
		e.emitExecutionReport(result.Order, req.Session, req.ClientOrderID)
	}
	e.publishMarketDataUpdate()
}

func (e *TradingEngine) cancelOrder(req protocol.OrderCancellationRequest) {
	order, err := e.core.Cancel(req.OrderID)
	if err != nil {
		e.notifications.AddCancellationReject(protocol.OrderCancellationReject{
			Session:       req.Session,
			OrderID:       req.OrderID,
			ClientOrderID: req.ClientOrderID,
			Reason:        err.Error(),
		})
		return
	}

	e.forgetOrder(order.ID)
	e.notifications.AddCancellationConfirmation(protocol.OrderCancellationConfirmation{
		Session:       req.Session,
		OrderID:       order.ID,
		ClientOrderID: req.ClientOrderID,
	})
	e.notifications.AddExecutionReport(protocol.ExecutionReport{
		Session:       req.Session,
		Kind:          protocol.ExecReportCancelled,
		OrderID:       order.ID,
		ClientOrderID: req.ClientOrderID,
		FilledQty:     order.FilledQty,
		RemainingQty:  order.RemainingQty(),
		Status:        order.Status,
	})
	e.queueAudit(&events.OrderCancelledEvent{
		Header:       e.header(events.TypeOrderCancelled),
		OrderID:      order.ID,
		CancelledQty: order.RemainingQty(),
		Reason:       "client request",
	})
	e.publishMarketDataUpdate()
}

func (e *TradingEngine) processSecurityStatusRequest(req protocol.SecurityStatusRequest) {
	e.notifications.AddSecurityStatus(protocol.SecurityStatus{
		Session: req.Session,
		Phase:   e.phase.String(),
	})
}

func (e *TradingEngine) processMarketDataRequest(req protocol.MarketDataRequest, subscriberID string) {
	e.publisher.Subscribe(subscriberID, req.Session)
	snapshot := e.publisher.Snapshot(e.core.Book(), subscriberID, req.Session)
	e.notifications.AddMarketDataSnapshot(snapshot)
}

func (e *TradingEngine) captureState() protocol.InstrumentState {
	nextOrderID, nextTradeID, nextSequence := e.core.Counters()
	restingOrders := e.core.Book().Orders()
	out := make([]orders.Order, len(restingOrders))
	for i, o := range restingOrders {
		out[i] = *o
	}
	return protocol.InstrumentState{
		Instrument: e.inst,
		Orders:     out,
		Info: protocol.StateInfo{
			NextOrderID:  nextOrderID,
			NextTradeID:  nextTradeID,
			NextSequence: nextSequence,
			Phase:        e.phase.String(),
		},
	}
}

func (e *TradingEngine) recoverState(state protocol.InstrumentState) {
	e.core.Restore(state.Orders, state.Info.NextOrderID, state.Info.NextTradeID, state.Info.NextSequence)
	for _, o := range state.Orders {
		if o.Status == orders.StatusNew || o.Status == orders.StatusPartiallyFilled {
			e.trackOrder(&o, session.Session{}, o.ClientOrderID)
		}
	}
	e.publishMarketDataUpdate()
}

func (e *TradingEngine) notifyClientDisconnected(sess session.Session) {
	if !e.cfg.CancelOnDisconnect {
		e.publisher.UnsubscribeSession(sess)
		return
	}

	orderIDs, ok := e.sessionOrders[sess]
	if !ok {
		e.publisher.UnsubscribeSession(sess)
		return
	}
	ids := make([]uint64, 0, len(orderIDs))
	for id := range orderIDs {
		ids = append(ids, id)
	}
	for _, id := range ids {
		order, err := e.core.Cancel(id)
		if err != nil {
			continue
		}
		e.forgetOrder(id)
		e.notifications.AddExecutionReport(protocol.ExecutionReport{
			Session:       sess,
			Kind:          protocol.ExecReportCancelled,
			OrderID:       order.ID,
			ClientOrderID: order.ClientOrderID,
			FilledQty:     order.FilledQty,
			RemainingQty:  order.RemainingQty(),
			Status:        order.Status,
		})
		e.queueAudit(&events.OrderCancelledEvent{
			Header:       e.header(events.TypeOrderCancelled),
			OrderID:      order.ID,
			CancelledQty: order.RemainingQty(),
			Reason:       "client disconnected",
		})
	}
	e.publisher.UnsubscribeSession(sess)
	if len(ids) > 0 {
		e.publishMarketDataUpdate()
	}
}

func (e *TradingEngine) tick() {
	// tick does no work. IOC and FOK remainders are already settled
	// synchronously in Process; resting orders, DAY orders included, are
	// never expired here or anywhere else in the engine.
}

func (e *TradingEngine) phaseTransition(event protocol.PhaseTransitionEvent) {
	e.phase = event.NewPhase
	e.notifications.AddSecurityStatus(protocol.SecurityStatus{Phase: e.phase.String()})
}

// applyFills records one ExecutionReport per resting (maker) order touched
// by a match and updates the publisher's last-trade fields. The taker's own
// report is emitted separately by the caller, once, reflecting its final
// status.
func (e *TradingEngine) applyFills(fills []orders.Fill) {
	for _, f := range fills {
		meta, ok := e.orderMeta[f.MakerOrderID]
		maker := e.core.GetOrder(f.MakerOrderID)
		var makerStatus orders.Status
		var makerFilled, makerRemaining int64
		if maker != nil {
			makerStatus = maker.Status
			makerFilled = maker.FilledQty
			makerRemaining = maker.RemainingQty()
		} else {
			makerStatus = orders.StatusFilled
		}

		if ok {
			e.notifications.AddExecutionReport(protocol.ExecutionReport{
				Session:       meta.session,
				Kind:          protocol.ExecReportFill,
				OrderID:       f.MakerOrderID,
				ClientOrderID: meta.clientOrderID,
				FilledQty:     makerFilled,
				RemainingQty:  makerRemaining,
				LastPrice:     f.Price,
				LastQty:       f.Quantity,
				Status:        makerStatus,
			})
		}
		if maker == nil {
			e.forgetOrder(f.MakerOrderID)
		}

		e.queueAudit(&events.FillEvent{
			Header:         e.header(events.TypeFill),
			TradeID:        f.TradeID,
			Price:          f.Price,
			Quantity:       f.Quantity,
			MakerOrderID:   f.MakerOrderID,
			TakerOrderID:   f.TakerOrderID,
			MakerAccountID: f.MakerAccountID,
			TakerAccountID: f.TakerAccountID,
			TakerSide:      f.TakerSide,
		})

		e.publisher.RecordTrade(f.Price, f.Quantity)
	}
}

// emitExecutionReport reports the taker/amending order's own final status
// after zero or more fills were applied.
func (e *TradingEngine) emitExecutionReport(o *orders.Order, sess session.Session, clientOrderID string) {
	e.notifications.AddExecutionReport(protocol.ExecutionReport{
		Session:       sess,
		Kind:          executionKindFor(o),
		OrderID:       o.ID,
		ClientOrderID: clientOrderID,
		FilledQty:     o.FilledQty,
		RemainingQty:  o.RemainingQty(),
		Status:        o.Status,
	})
}
