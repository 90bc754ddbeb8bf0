// Package marketdata builds market-data snapshots and updates from one
// instrument's order book and fans them out to subscribed sessions.
//
// Each trading engine owns exactly one Publisher for its own instrument;
// there is no cross-instrument symbol map here — that indirection belonged
// to a single shared engine serving many symbols, which this system
// replaces with one engine per instrument (internal/engine).
package marketdata

import (
	"sync"
	"time"

	"github.com/quodfinancial/venue-simulator/internal/orderbook"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

const depthLevels = 10

type subscriber struct {
	id      string
	session session.Session
}

// Publisher tracks an instrument's market-data subscribers and renders
// snapshots/updates from its order book on demand. It never pushes on its
// own schedule: the owning engine calls Snapshot once per
// ProcessMarketDataRequest and Update once per book-mutating command.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[string]subscriber
	lastPrice   int64
	lastQty     int64
}

// NewPublisher returns a Publisher with no subscribers.
func NewPublisher() *Publisher {
	return &Publisher{subscribers: make(map[string]subscriber)}
}

// Subscribe registers subscriberID, routed to sess, for this instrument's
// market data. Re-subscribing the same id replaces its session.
func (p *Publisher) Subscribe(subscriberID string, sess session.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[subscriberID] = subscriber{id: subscriberID, session: sess}
}

// Unsubscribe removes subscriberID, if present.
func (p *Publisher) Unsubscribe(subscriberID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subscribers, subscriberID)
}

// UnsubscribeSession removes every subscription routed to sess, used when
// the engine observes a SessionTerminatedEvent for it.
func (p *Publisher) UnsubscribeSession(sess session.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, sub := range p.subscribers {
		if sub.session == sess {
			delete(p.subscribers, id)
		}
	}
}

// RecordTrade updates the last-trade fields included in subsequent
// snapshots and updates.
func (p *Publisher) RecordTrade(price, qty int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPrice = price
	p.lastQty = qty
}

// Snapshot renders the full current depth picture for subscriberID's
// initial subscription reply.
func (p *Publisher) Snapshot(book *orderbook.Book, subscriberID string, sess session.Session) protocol.MarketDataSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return protocol.MarketDataSnapshot{
		Session:      sess,
		SubscriberID: subscriberID,
		Bids:         levelViews(book.BidDepth(depthLevels)),
		Asks:         levelViews(book.AskDepth(depthLevels)),
		LastPrice:    p.lastPrice,
		LastQty:      p.lastQty,
		AsOf:         time.Now(),
	}
}

// PublishUpdate renders the current depth picture once and invokes deliver
// once per subscriber, carrying that subscriber's id. Called by the engine
// after any book-mutating command.
func (p *Publisher) PublishUpdate(book *orderbook.Book, deliver func(protocol.MarketDataUpdate)) {
	p.mu.RLock()
	bids := levelViews(book.BidDepth(depthLevels))
	asks := levelViews(book.AskDepth(depthLevels))
	lastPrice, lastQty := p.lastPrice, p.lastQty
	subs := make([]subscriber, 0, len(p.subscribers))
	for _, sub := range p.subscribers {
		subs = append(subs, sub)
	}
	p.mu.RUnlock()

	now := time.Now()
	for _, sub := range subs {
		deliver(protocol.MarketDataUpdate{
			SubscriberID: sub.id,
			Bids:         bids,
			Asks:         asks,
			LastPrice:    lastPrice,
			LastQty:      lastQty,
			AsOf:         now,
		})
	}
}

// SubscriberCount reports how many subscribers are currently registered.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}

func levelViews(levels []*orderbook.PriceLevel) []protocol.PriceLevelView {
	out := make([]protocol.PriceLevelView, len(levels))
	for i, l := range levels {
		out[i] = protocol.PriceLevelView{Price: l.Price, Quantity: l.TotalQty, Orders: l.Count()}
	}
	return out
}
